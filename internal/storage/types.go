package storage

import "time"

// RecordStatus is the validation lifecycle state of a recipient's address.
type RecordStatus string

const (
	StatusPending    RecordStatus = "pending"
	StatusQueued     RecordStatus = "queued"
	StatusValid      RecordStatus = "valid"
	StatusInvalid    RecordStatus = "invalid"
	StatusError      RecordStatus = "error"
	StatusOverridden RecordStatus = "overridden"
)

// Recipient is a card/newsletter recipient record.
type Recipient struct {
	ID          string `dynamodbav:"id" json:"id"`
	Title       string `dynamodbav:"title,omitempty" json:"title,omitempty"`
	FirstName   string `dynamodbav:"firstName" json:"firstName"`
	SecondName  string `dynamodbav:"secondName,omitempty" json:"secondName,omitempty"`
	LastName    string `dynamodbav:"lastName" json:"lastName"`
	Suffix      string `dynamodbav:"suffix,omitempty" json:"suffix,omitempty"`
	MailingName string `dynamodbav:"mailingName,omitempty" json:"mailingName,omitempty"`
	Email       string `dynamodbav:"email,omitempty" json:"email,omitempty"`

	// Raw address as entered by the admin
	Address1 string `dynamodbav:"address1,omitempty" json:"address1,omitempty"`
	Address2 string `dynamodbav:"address2,omitempty" json:"address2,omitempty"`
	City     string `dynamodbav:"city,omitempty" json:"city,omitempty"`
	State    string `dynamodbav:"state,omitempty" json:"state,omitempty"`
	Zipcode  string `dynamodbav:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country  string `dynamodbav:"country,omitempty" json:"country,omitempty"`

	WantsPaper bool   `dynamodbav:"wantsPaper" json:"wantsPaper"`
	SendCard   bool   `dynamodbav:"sendCard" json:"sendCard"`
	AccessCode string `dynamodbav:"accessCode,omitempty" json:"accessCode,omitempty"`

	// Validation outcome. Only the queueing layer and the orchestrator
	// write these; admin edits to the raw address reset them.
	AddressValidationStatus  RecordStatus `dynamodbav:"addressValidationStatus" json:"addressValidationStatus"`
	AddressValidationMessage string       `dynamodbav:"addressValidationMessage,omitempty" json:"addressValidationMessage,omitempty"`
	AddressValidatedAt       *time.Time   `dynamodbav:"addressValidatedAt,omitempty" json:"addressValidatedAt,omitempty"`
	ValidatedAddress1        string       `dynamodbav:"validatedAddress1,omitempty" json:"validatedAddress1,omitempty"`
	ValidatedAddress2        string       `dynamodbav:"validatedAddress2,omitempty" json:"validatedAddress2,omitempty"`
	ValidatedCity            string       `dynamodbav:"validatedCity,omitempty" json:"validatedCity,omitempty"`
	ValidatedState           string       `dynamodbav:"validatedState,omitempty" json:"validatedState,omitempty"`
	ValidatedZipcode         string       `dynamodbav:"validatedZipcode,omitempty" json:"validatedZipcode,omitempty"`
	ValidatedCountry         string       `dynamodbav:"validatedCountry,omitempty" json:"validatedCountry,omitempty"`

	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// AccessCodeRecord is one invitation code, created at import time or singly
// by an admin and consumed exactly once.
type AccessCodeRecord struct {
	ID               string     `dynamodbav:"id" json:"id"`
	Code             string     `dynamodbav:"code" json:"code"`
	RecipientName    string     `dynamodbav:"recipientName" json:"recipientName"`
	RecipientAddress string     `dynamodbav:"recipientAddress,omitempty" json:"recipientAddress,omitempty"`
	Used             bool       `dynamodbav:"used" json:"used"`
	UsedAt           *time.Time `dynamodbav:"usedAt,omitempty" json:"usedAt,omitempty"`
	UsedBy           string     `dynamodbav:"usedBy,omitempty" json:"usedBy,omitempty"`
	CreatedAt        time.Time  `dynamodbav:"createdAt" json:"createdAt"`
}

// Newsletter is one yearly issue. The PDF itself lives in external file
// storage; this record only carries metadata.
type Newsletter struct {
	ID           string  `dynamodbav:"id" json:"id"`
	Title        string  `dynamodbav:"title" json:"title"`
	Year         int     `dynamodbav:"year" json:"year"`
	HasCardImage bool    `dynamodbav:"hasCardImage" json:"hasCardImage"`
	CardWidthIn  float64 `dynamodbav:"cardWidthIn,omitempty" json:"cardWidthIn,omitempty"`
	CardHeightIn float64 `dynamodbav:"cardHeightIn,omitempty" json:"cardHeightIn,omitempty"`
	PDFWidthIn   float64 `dynamodbav:"pdfWidthIn,omitempty" json:"pdfWidthIn,omitempty"`
	PDFHeightIn  float64 `dynamodbav:"pdfHeightIn,omitempty" json:"pdfHeightIn,omitempty"`
	PDFPageCount int     `dynamodbav:"pdfPageCount,omitempty" json:"pdfPageCount,omitempty"`

	CreatedAt time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}
