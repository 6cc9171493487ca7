package transit

// Response fragments of the PRIM (Navitia v2) API. Only the fields the
// pipeline reads are declared.

type Coord struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type AdministrativeRegion struct {
	Name string `json:"name"`
}

type StopArea struct {
	ID                    string                 `json:"id"`
	Name                  string                 `json:"name"`
	Label                 string                 `json:"label"`
	Coord                 *Coord                 `json:"coord"`
	AdministrativeRegions []AdministrativeRegion `json:"administrative_regions"`
}

type StopAreasResponse struct {
	StopAreas []StopArea `json:"stop_areas"`
}

type MessageChannel struct {
	Name  string   `json:"name"`
	Types []string `json:"types"`
}

type Message struct {
	Text    string         `json:"text"`
	Channel MessageChannel `json:"channel"`
}

type Severity struct {
	Name   string `json:"name"`
	Effect string `json:"effect"`
}

type ApplicationPeriod struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

type PTObject struct {
	ID string `json:"id"`
}

type ImpactedObject struct {
	PTObject PTObject `json:"pt_object"`
}

type Disruption struct {
	ID                 string              `json:"id"`
	Status             string              `json:"status"`
	Tags               []string            `json:"tags"`
	Severity           Severity            `json:"severity"`
	Messages           []Message           `json:"messages"`
	ApplicationPeriods []ApplicationPeriod `json:"application_periods"`
	ImpactedObjects    []ImpactedObject    `json:"impacted_objects"`
}

type LineReportsResponse struct {
	Disruptions []Disruption `json:"disruptions"`
}

type Place struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Quality      int       `json:"quality"`
	EmbeddedType string    `json:"embedded_type"`
	StopArea     *StopArea `json:"stop_area"`
}

type PlacesResponse struct {
	Places []Place `json:"places"`
}

type SectionLink struct {
	ID string `json:"id"`
}

type DisplayInformations struct {
	CommercialMode string `json:"commercial_mode"`
	PhysicalMode   string `json:"physical_mode"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Direction      string `json:"direction"`
}

type SectionPoint struct {
	Name string `json:"name"`
}

type Section struct {
	Type                string              `json:"type"`
	Duration            int                 `json:"duration"`
	From                SectionPoint        `json:"from"`
	To                  SectionPoint        `json:"to"`
	DisplayInformations DisplayInformations `json:"display_informations"`
	Links               []SectionLink       `json:"links"`
}

type Journey struct {
	Duration          int       `json:"duration"`
	NbTransfers       int       `json:"nb_transfers"`
	DepartureDateTime string    `json:"departure_date_time"`
	ArrivalDateTime   string    `json:"arrival_date_time"`
	Sections          []Section `json:"sections"`
}

type JourneysResponse struct {
	Journeys    []Journey    `json:"journeys"`
	Disruptions []Disruption `json:"disruptions"`
}
