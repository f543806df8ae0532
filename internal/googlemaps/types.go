package googlemaps

// validateRequest is the Address Validation API request envelope.
type validateRequest struct {
	Address        postalAddress `json:"address"`
	EnableUspsCass bool          `json:"enableUspsCass,omitempty"`
}

// postalAddress is the API's address shape, shared by request and response.
type postalAddress struct {
	RegionCode         string   `json:"regionCode,omitempty"`
	PostalCode         string   `json:"postalCode,omitempty"`
	AdministrativeArea string   `json:"administrativeArea,omitempty"`
	Locality           string   `json:"locality,omitempty"`
	AddressLines       []string `json:"addressLines,omitempty"`
}

// validateResponse is the raw API response. Every field is optional; the
// mapping layer treats absence as a terminal outcome rather than an error.
type validateResponse struct {
	Result *validateResult `json:"result"`
}

type validateResult struct {
	Verdict  *verdict       `json:"verdict"`
	Address  *resultAddress `json:"address"`
	USPSData *uspsData      `json:"uspsData"`
}

type verdict struct {
	AddressComplete          bool   `json:"addressComplete"`
	ValidationGranularity    string `json:"validationGranularity"`
	HasUnconfirmedComponents bool   `json:"hasUnconfirmedComponents,omitempty"`
}

type resultAddress struct {
	FormattedAddress string         `json:"formattedAddress,omitempty"`
	PostalAddress    *postalAddress `json:"postalAddress"`
}

// uspsData carries the CASS output for US addresses. Absent for
// international input.
type uspsData struct {
	DPVConfirmation string `json:"dpvConfirmation,omitempty"`
}

// apiError is the error envelope Google returns on non-2xx responses.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
