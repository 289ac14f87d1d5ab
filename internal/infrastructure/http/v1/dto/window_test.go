package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganji/internal/domain/calendar"
)

func TestWindowRequest_Defaults(t *testing.T) {
	today := calendar.NewDate(2024, time.March, 5)

	tests := []struct {
		name string
		req  WindowRequest
		want calendar.Window
	}{
		{"empty is current month", WindowRequest{}, calendar.Monthly(time.March, 2024)},
		{"daily defaults to today", WindowRequest{Kind: "daily"}, calendar.Daily(today)},
		{"daily date", WindowRequest{Kind: "daily", Date: "2024-02-29"}, calendar.Daily(calendar.NewDate(2024, time.February, 29))},
		{"monthly keeps current year", WindowRequest{Kind: "monthly", Month: 12}, calendar.Monthly(time.December, 2024)},
		{"monthly explicit", WindowRequest{Kind: "monthly", Year: 2023, Month: 2}, calendar.Monthly(time.February, 2023)},
		{"yearly defaults to this year", WindowRequest{Kind: "yearly"}, calendar.Yearly(2024)},
		{"range", WindowRequest{Kind: "range", From: "2024-01-30", To: "2024-02-02"},
			calendar.Range(calendar.NewDate(2024, time.January, 30), calendar.NewDate(2024, time.February, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.ToWindow(today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowRequest_Invalid(t *testing.T) {
	today := calendar.NewDate(2024, time.March, 5)

	for _, req := range []WindowRequest{
		{Kind: "weekly"},
		{Kind: "monthly", Month: -1},
		{Kind: "range", To: "2024-01-01"},
		{Kind: "range", From: "2024-02-01", To: "2024-01-01"},
		{Kind: "daily", Date: "yesterday"},
	} {
		_, err := req.ToWindow(today)
		assert.Error(t, err, "%+v", req)
	}
}
