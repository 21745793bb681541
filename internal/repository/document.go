package repository

import (
	"bytes"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

// DocumentVersion is the payload format written by EncodeDocument
const DocumentVersion = 1

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrCorruptPayload marks stored data that cannot be decoded
	ErrCorruptPayload = errors.New("corrupt invoice payload")

	ErrUnsupportedVersion = errors.New("unsupported payload version")
)

type document struct {
	Version  int              `json:"version"`
	Invoices []domain.Invoice `json:"invoices"`
}

// EncodeDocument serializes the collection into the versioned envelope
func EncodeDocument(invoices domain.Collection) ([]byte, error) {
	return encode(invoices, false)
}

func encode(invoices domain.Collection, indent bool) ([]byte, error) {
	doc := document{Version: DocumentVersion, Invoices: invoices}
	if doc.Invoices == nil {
		doc.Invoices = []domain.Invoice{}
	}

	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode invoices")
	}
	return data, nil
}

// DecodeDocument parses a stored payload. Both the versioned envelope and a
// bare JSON array of invoices (the unversioned format) are accepted. An empty
// payload is an empty collection.
func DecodeDocument(data []byte) (domain.Collection, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.Collection{}, nil
	}

	if data[0] == '[' {
		var legacy []legacyInvoice
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "failed to decode invoice array"), ErrCorruptPayload)
		}
		invoices := make([]domain.Invoice, 0, len(legacy))
		for _, l := range legacy {
			invoices = append(invoices, l.toInvoice())
		}
		return normalize(invoices), nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode invoice document"), ErrCorruptPayload)
	}
	if doc.Version > DocumentVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", doc.Version)
	}
	return normalize(doc.Invoices), nil
}

func normalize(invoices []domain.Invoice) domain.Collection {
	if invoices == nil {
		return domain.Collection{}
	}
	return domain.Collection(invoices)
}
