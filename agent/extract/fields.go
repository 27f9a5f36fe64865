package extract

type Category string

const (
	CategoryShipping  Category = "shipping"
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryOther     Category = "other"
)

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// FieldNames is the fixed reporting order for missing fields.
var FieldNames = []string{"order_id", "category", "description", "urgency"}

// ExtractedData is the validated structured snapshot of a support
// request. A nil field is "not yet captured"; every non-nil field has
// passed normalization before entering this type.
type ExtractedData struct {
	OrderID     *string   `json:"order_id,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Urgency     *Urgency  `json:"urgency,omitempty"`
}

// Merge combines this snapshot with a newer one, field by field:
// the newer value wins when present, otherwise the old one is kept.
// A turn that offers only one field can never erase the others.
func (d ExtractedData) Merge(other ExtractedData) ExtractedData {
	merged := d
	if other.OrderID != nil {
		merged.OrderID = other.OrderID
	}
	if other.Category != nil {
		merged.Category = other.Category
	}
	if other.Description != nil {
		merged.Description = other.Description
	}
	if other.Urgency != nil {
		merged.Urgency = other.Urgency
	}
	return merged
}

// MissingFields lists the names of unset fields in fixed order.
func (d ExtractedData) MissingFields() []string {
	missing := make([]string, 0, len(FieldNames))
	if d.OrderID == nil {
		missing = append(missing, "order_id")
	}
	if d.Category == nil {
		missing = append(missing, "category")
	}
	if d.Description == nil {
		missing = append(missing, "description")
	}
	if d.Urgency == nil {
		missing = append(missing, "urgency")
	}
	return missing
}

func (d ExtractedData) IsComplete() bool {
	return d.OrderID != nil && d.Category != nil && d.Description != nil && d.Urgency != nil
}

// Draft carries raw field values proposed by the model for one turn,
// before validation.
type Draft struct {
	OrderID     *string
	Category    *string
	Description *string
	Urgency     *string
}

// Sanitize validates each present draft field independently. Invalid
// values are dropped and reported per field; nothing malformed ever
// reaches an ExtractedData.
func (dr Draft) Sanitize(minDescription int) (ExtractedData, map[string]string) {
	var data ExtractedData
	fieldErrors := make(map[string]string)

	if dr.OrderID != nil {
		if normalized, err := NormalizeOrderID(*dr.OrderID); err != nil {
			fieldErrors["order_id"] = err.Error()
		} else {
			data.OrderID = &normalized
		}
	}
	if dr.Category != nil {
		if normalized, err := NormalizeCategory(*dr.Category); err != nil {
			fieldErrors["category"] = err.Error()
		} else {
			data.Category = &normalized
		}
	}
	if dr.Description != nil {
		if normalized, err := NormalizeDescription(*dr.Description, minDescription); err != nil {
			fieldErrors["description"] = err.Error()
		} else {
			data.Description = &normalized
		}
	}
	if dr.Urgency != nil {
		if normalized, err := NormalizeUrgency(*dr.Urgency); err != nil {
			fieldErrors["urgency"] = err.Error()
		} else {
			data.Urgency = &normalized
		}
	}

	return data, fieldErrors
}

// Result wraps a cumulative snapshot with its derived completeness
// state. Derived, never stored independently.
type Result struct {
	Extracted        ExtractedData     `json:"extracted"`
	MissingFields    []string          `json:"missing_fields"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
	IsComplete       bool              `json:"is_complete"`
}

// NewResult derives the missing-field list and completeness flag from a
// snapshot.
func NewResult(data ExtractedData, fieldErrors map[string]string) Result {
	return Result{
		Extracted:        data,
		MissingFields:    data.MissingFields(),
		ValidationErrors: fieldErrors,
		IsComplete:       data.IsComplete(),
	}
}
