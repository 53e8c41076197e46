// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of card and transaction payloads. Both JSON
// bodies and multipart forms (for photo uploads) are accepted.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"spendingtracker/internal/core"
	"spendingtracker/internal/services"
)

const maxJSONBodyBytes = 1 << 20

// lenientText accepts a JSON string or a bare literal and keeps its text, so
// numeric fields reach the lenient parsers in core unchanged.
type lenientText string

func (t *lenientText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = lenientText(s)
		return nil
	}
	*t = lenientText(data)
	return nil
}

type cardRequest struct {
	Name            string      `json:"name"`
	Number          string      `json:"number"`
	Type            string      `json:"type"`
	Limit           lenientText `json:"limit"`
	ExpirationMonth int         `json:"expiration_month"`
	ExpirationYear  int         `json:"expiration_year"`
	Color           string      `json:"color"`
}

func (c cardRequest) toInput() (services.CardInput, error) {
	in := services.CardInput{
		Name:            sanitizeInput(c.Name),
		Number:          sanitizeInput(c.Number),
		Type:            core.CardType(sanitizeInput(c.Type)),
		LimitText:       string(c.Limit),
		ExpirationMonth: c.ExpirationMonth,
		ExpirationYear:  c.ExpirationYear,
	}
	if c.Color != "" {
		color, ok := core.ParseHexColor(c.Color)
		if !ok {
			return services.CardInput{}, fmt.Errorf("%w: invalid color %q", errBadRequest, c.Color)
		}
		in.Color = core.EncodeColor(color)
	}
	return in, nil
}

type transactionRequest struct {
	Name   string      `json:"name"`
	Amount lenientText `json:"amount"`
	Date   string      `json:"date"`
	Photo  []byte      `json:"photo"` // base64 in JSON
}

// photoOptions bounds and recompresses uploaded photos.
type photoOptions struct {
	MaxBytes int64
	Quality  int
}

// parseCardRequest decodes a JSON card payload.
func parseCardRequest(w http.ResponseWriter, r *http.Request) (services.CardInput, error) {
	var req cardRequest
	if err := decodeJSON(w, r, maxJSONBodyBytes, &req); err != nil {
		return services.CardInput{}, err
	}
	return req.toInput()
}

// parseTransactionRequest decodes a JSON or multipart transaction payload.
// The photo, if any, is size checked and recompressed.
func parseTransactionRequest(w http.ResponseWriter, r *http.Request, opts photoOptions) (services.TransactionInput, error) {
	var req transactionRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := parseMultipartTransaction(w, r, opts, &req); err != nil {
			return services.TransactionInput{}, err
		}
	} else {
		// base64 inflates the photo by a third
		limit := maxJSONBodyBytes + opts.MaxBytes*4/3 + 4
		if err := decodeJSON(w, r, limit, &req); err != nil {
			return services.TransactionInput{}, err
		}
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return services.TransactionInput{}, err
	}

	in := services.TransactionInput{
		Name:       sanitizeInput(req.Name),
		AmountText: string(req.Amount),
		Date:       date,
	}

	if len(req.Photo) > 0 {
		if int64(len(req.Photo)) > opts.MaxBytes {
			return services.TransactionInput{}, fmt.Errorf("%w: %d bytes exceeds %d", errPhotoTooLarge, len(req.Photo), opts.MaxBytes)
		}
		in.Photo, err = compressPhoto(req.Photo, opts.Quality)
		if err != nil {
			return services.TransactionInput{}, err
		}
	}
	return in, nil
}

func parseMultipartTransaction(w http.ResponseWriter, r *http.Request, opts photoOptions, req *transactionRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBytes+maxJSONBodyBytes)
	if err := r.ParseMultipartForm(opts.MaxBytes); err != nil {
		return bodyError(err)
	}

	req.Name = r.FormValue("name")
	req.Amount = lenientText(r.FormValue("amount"))
	req.Date = r.FormValue("date")

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: photo: %v", errBadRequest, err)
	}
	defer file.Close()

	if header.Size > opts.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", errPhotoTooLarge, header.Size, opts.MaxBytes)
	}
	req.Photo, err = io.ReadAll(io.LimitReader(file, opts.MaxBytes+1))
	if err != nil {
		return fmt.Errorf("read photo: %w", err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: request body exceeds %d bytes", errPhotoTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// parseDate accepts RFC 3339 timestamps or YYYY-MM-DD dates. Empty means unset.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", errBadRequest, s)
	}
	return t, nil
}

// parseConfirm reads the confirm query parameter. Anything but a true value is false.
func parseConfirm(r *http.Request) bool {
	confirmed, err := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return err == nil && confirmed
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
