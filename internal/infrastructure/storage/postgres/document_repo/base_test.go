package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velora/internal/core/apperror"
	"velora/internal/domain/documents/delivery"
)

func newTestDeliveryRepo() *BaseDocumentRepo[*delivery.Delivery] {
	return NewBaseDocumentRepo(nil, deliveriesTable, func() *delivery.Delivery {
		return &delivery.Delivery{}
	})
}

func TestParseOrderBy(t *testing.T) {
	r := newTestDeliveryRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
	}{
		{"empty defaults to date and number", "", "date DESC, number DESC"},
		{"bare column", "date", "date ASC"},
		{"handler default", "date DESC", "date DESC"},
		{"sql suffix lowercase", "number asc", "number ASC"},
		{"dash prefix", "-date", "date DESC"},
		{"plus prefix", "+number", "number ASC"},
		{"surrounding whitespace", " status ", "status ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.parseOrderBy(tt.orderBy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrderByRejectsUnknownInput(t *testing.T) {
	r := newTestDeliveryRepo()

	for _, orderBy := range []string{
		"evil; DROP TABLE doc_deliveries",
		"nonexistent",
		"date DESCENDING",
		"date DESC, number DESC",
	} {
		_, err := r.parseOrderBy(orderBy)
		require.Error(t, err, "orderBy %q", orderBy)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
}
