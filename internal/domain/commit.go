package domain

// PricingAction is the terminal action a user picks after classification.
type PricingAction string

const (
	ActionInsert      PricingAction = "INSERT"
	ActionAddPrice    PricingAction = "ADD_PRICE"
	ActionUpdatePrice PricingAction = "UPDATE_PRICE"
	ActionAcknowledge PricingAction = "ACKNOWLEDGE"
	ActionDiscard     PricingAction = "DISCARD"
)

// BookPayload is the wire form of a BookDraft. Year is a pointer so an
// unset year serializes as null, never 0.
type BookPayload struct {
	Title              string `json:"title"`
	Author             string `json:"author"`
	Year               *int   `json:"year"`
	ISBN               string `json:"isbn,omitempty"`
	OtherCode          string `json:"other_code,omitempty"`
	Edition            string `json:"edition,omitempty"`
	BindingType        string `json:"binding_type,omitempty"`
	Classification     string `json:"classification,omitempty"`
	Remarks            string `json:"remarks,omitempty"`
	Imprint            string `json:"imprint,omitempty"`
	PublisherExclusive bool   `json:"publisher_exclusive,omitempty"`
}

// Payload converts the draft to its wire form, mapping the 0-year sentinel
// to null.
func (d *BookDraft) Payload() BookPayload {
	return BookPayload{
		Title:              d.Title,
		Author:             d.Author,
		Year:               d.SanitizedYear(),
		ISBN:               d.ISBN,
		OtherCode:          d.OtherCode,
		Edition:            d.Edition,
		BindingType:        d.BindingType,
		Classification:     d.Classification,
		Remarks:            d.Remarks,
		Imprint:            d.Imprint,
		PublisherExclusive: d.PublisherExclusive,
	}
}

// CommitRequest is the write issued after the user picks a terminal action.
// BookID and PricingID are set only when classification identified an
// existing record; their absence is normal for INSERT.
type CommitRequest struct {
	Book          BookPayload    `json:"book"`
	Pricing       PricingDraft   `json:"pricing"`
	Publisher     PublisherDraft `json:"publisher"`
	Status        BookStatus     `json:"status"`
	PricingAction PricingAction  `json:"pricing_action"`
	BookID        string         `json:"book_id,omitempty"`
	PricingID     string         `json:"pricing_id,omitempty"`
}

// CommitResult is the catalog's answer to a commit.
type CommitResult struct {
	BookID    string `json:"book_id,omitempty"`
	PricingID string `json:"pricing_id,omitempty"`
}
