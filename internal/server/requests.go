package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"

	"github.com/iwvelando/loan-calculator/pkg/loans"
	"github.com/iwvelando/loan-calculator/pkg/validation"
)

// numberText accepts a JSON number or string and keeps its text so that
// form-style values such as "250,000" or "4.5%" parse like typed input.
type numberText string

func (n *numberText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = numberText(s)
		return nil
	}
	*n = numberText(trimmed)
	return nil
}

type loanRequest struct {
	Amount    numberText `json:"amount"`
	Rate      numberText `json:"rate"`
	Years     numberText `json:"years"`
	StartDate string     `json:"startDate,omitempty"`
}

func (req loanRequest) empty() bool {
	return req.Amount == "" && req.Rate == "" && req.Years == ""
}

// input parses the three loan fields in form order and returns the first
// failure.
func (req loanRequest) input() (loans.Input, error) {
	amount, err := validation.ParsePositive("amount", string(req.Amount))
	if err != nil {
		return loans.Input{}, err
	}
	rate, err := validation.ParsePositive("rate", string(req.Rate))
	if err != nil {
		return loans.Input{}, err
	}
	years, err := validation.ParsePositive("years", string(req.Years))
	if err != nil {
		return loans.Input{}, err
	}
	input := loans.Input{Principal: amount, AnnualRate: rate, Years: years, StartDate: req.StartDate}
	return input, input.Validate()
}

type extraPaymentRequest struct {
	loanRequest
	ExtraAmount numberText `json:"extraAmount"`
	ExtraMode   string     `json:"extraMode"`
}

func (req extraPaymentRequest) extra() (loans.ExtraPayment, error) {
	amount, err := validation.ParsePositive("extraAmount", string(req.ExtraAmount))
	if err != nil {
		return loans.ExtraPayment{}, err
	}
	extra := loans.ExtraPayment{Amount: amount, Mode: loans.ExtraMode(req.ExtraMode)}
	return extra, extra.Validate()
}

type payoffTargetRequest struct {
	loanRequest
	TargetMonths numberText `json:"targetMonths"`
	ExtraMode    string     `json:"extraMode"`
}

func (req payoffTargetRequest) target() (int, error) {
	months, err := validation.ParsePositive("targetMonths", string(req.TargetMonths))
	if err != nil {
		return 0, err
	}
	if months != math.Trunc(months) {
		return 0, &validation.InputError{Field: "targetMonths", Value: string(req.TargetMonths), Reason: "must be a whole number of months"}
	}
	return int(months), nil
}

type scenarioRequest struct {
	loanRequest
	Name string `json:"name"`
}

// decodeJSON reads a size-limited JSON body into out. An empty body leaves out
// unchanged when allowEmpty is set.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			if allowEmpty {
				return nil
			}
			return &validation.InputError{Field: "body", Reason: "is required"}
		}
		return &validation.InputError{Field: "body", Reason: "must be a valid JSON object"}
	}
	return nil
}
