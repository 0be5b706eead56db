package espn

const providerName = "espn"

type scoreboardResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	ID           string                `json:"id"`
	Date         string                `json:"date"`
	ShortName    string                `json:"shortName"`
	Competitions []competitionResponse `json:"competitions"`
}

type competitionResponse struct {
	Competitors []competitorResponse `json:"competitors"`
	Status      statusResponse       `json:"status"`
}

type competitorResponse struct {
	HomeAway   string              `json:"homeAway"`
	Score      string              `json:"score"`
	Team       teamResponse        `json:"team"`
	Linescores []linescoreResponse `json:"linescores"`
}

type linescoreResponse struct {
	Value float64 `json:"value"`
}

type teamResponse struct {
	Abbreviation string         `json:"abbreviation"`
	DisplayName  string         `json:"displayName"`
	Logo         string         `json:"logo"`
	Logos        []logoResponse `json:"logos"`
}

type logoResponse struct {
	Href string `json:"href"`
}

type statusResponse struct {
	Period       int                `json:"period"`
	DisplayClock string             `json:"displayClock"`
	Type         statusTypeResponse `json:"type"`
}

type statusTypeResponse struct {
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	ShortDetail string `json:"shortDetail"`
}

type teamsResponse struct {
	Sports []sportResponse `json:"sports"`
}

type sportResponse struct {
	Leagues []leagueResponse `json:"leagues"`
}

type leagueResponse struct {
	Teams []teamEntryResponse `json:"teams"`
}

type teamEntryResponse struct {
	Team teamResponse `json:"team"`
}
