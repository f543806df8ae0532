package addresszen

// verifyRequest is the verification request body. A single joined query
// string is the most reliable input form per the vendor docs.
type verifyRequest struct {
	Query string `json:"query"`
}

// apiResponse is the common envelope: {result, code, message}.
type apiResponse struct {
	Result  *verifyResult `json:"result"`
	Code    int           `json:"code"`
	Message string        `json:"message"`
}

type verifyResult struct {
	AddressLineOne   string     `json:"address_line_one"`
	AddressLineTwo   string     `json:"address_line_two"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	ZipCode          string     `json:"zip_code"`
	CountryISO2      string     `json:"country_iso_2"`
	MatchInformation string     `json:"match_information"`
	Confidence       *float64   `json:"confidence"`
	Count            int        `json:"count"`
	Match            *matchInfo `json:"match"`
}

// matchInfo carries the carrier match detail; DPV "Y" means deliverable.
type matchInfo struct {
	DPV         string `json:"dpv"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	State       string `json:"state"`
	CountryCode string `json:"country_code"`
}

// autocompleteResponse wraps the suggestion list.
type autocompleteResponse struct {
	Result *struct {
		Suggestions []suggestion `json:"suggestions"`
	} `json:"result"`
	Suggestions []suggestion `json:"suggestions"`
}

type suggestion struct {
	ID        string `json:"id"`
	PlaceID   string `json:"place_id"`
	Text      string `json:"text"`
	Formatted string `json:"formatted"`
}
