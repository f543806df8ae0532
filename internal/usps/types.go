package usps

// addressResponse is the USPS Addresses 3.0 response envelope. Exactly one
// of Address or Error is populated on a 200.
type addressResponse struct {
	Address        *standardizedAddress `json:"address"`
	AdditionalInfo *additionalInfo      `json:"additionalInfo"`
	Error          *apiError            `json:"error"`
}

type standardizedAddress struct {
	StreetAddress    string `json:"streetAddress"`
	SecondaryAddress string `json:"secondaryAddress"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZIPCode          string `json:"ZIPCode"`
	ZIPPlus4         string `json:"ZIPPlus4"`
}

// additionalInfo carries the deliverability signal. DPVConfirmation values:
// "Y" confirmed, "D" confirmed with drop, "S" confirmed at street level
// (all deliverable), "N" not deliverable.
type additionalInfo struct {
	DPVConfirmation string `json:"DPVConfirmation"`
	Business        string `json:"business,omitempty"`
	Vacant          string `json:"vacant,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
