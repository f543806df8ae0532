package geoapify

// searchResponse is the geocoding response in format=json mode.
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	HouseNumber  string `json:"housenumber"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	StateCode    string `json:"state_code"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code"`
	Formatted    string `json:"formatted"`
	ResultType   string `json:"result_type"`
	Rank         *rank  `json:"rank"`
}

type rank struct {
	Confidence float64 `json:"confidence"`
	MatchType  string  `json:"match_type"`
}

// confidence returns the match confidence, 0 when the rank block is absent.
func (r searchResult) confidence() float64 {
	if r.Rank == nil {
		return 0
	}
	return r.Rank.Confidence
}
