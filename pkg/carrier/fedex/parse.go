package fedex

import (
	"encoding/base64"
	"encoding/json"

	"github.com/shiplink/fedexgate/pkg/carrier"
)

// The parsers are total: malformed or partial carrier bodies yield an
// "absent" result, never an error. The gateway decides which absences are
// fatal for which operation.

// tokenReply is the OAuth token response shape.
type tokenReply struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// parseToken extracts the bearer token and its lifetime in seconds.
// expires_in defaults to 3600 when the carrier omits it.
func parseToken(body []byte) (token string, expiresIn int, ok bool) {
	var reply tokenReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", 0, false
	}
	if reply.AccessToken == "" {
		return "", 0, false
	}
	expiresIn = reply.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	return reply.AccessToken, expiresIn, true
}

// rateReply mirrors the fields of the rate response the gateway reads. The
// net charge is a nested {amount, currency} node on the wire.
type rateReply struct {
	Output struct {
		RateReplyDetails []struct {
			ServiceType          string `json:"serviceType"`
			RatedShipmentDetails []struct {
				TotalNetCharge *struct {
					Amount   *float64 `json:"amount"`
					Currency string   `json:"currency"`
				} `json:"totalNetCharge"`
			} `json:"ratedShipmentDetails"`
		} `json:"rateReplyDetails"`
	} `json:"output"`
}

// parseRateQuotes extracts every priced quote, preserving carrier order.
// Entries without a rated-shipment charge are skipped, not failed. The
// service code of each quote prefers the originally requested code, then the
// reverse map, then the carrier's raw service string verbatim.
func parseRateQuotes(body []byte, requested carrier.ServiceType) []carrier.RateQuote {
	var reply rateReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil
	}

	var quotes []carrier.RateQuote
	for _, detail := range reply.Output.RateReplyDetails {
		if len(detail.RatedShipmentDetails) == 0 {
			continue
		}
		charge := detail.RatedShipmentDetails[0].TotalNetCharge
		if charge == nil || charge.Amount == nil {
			continue
		}

		service := requested
		if service == "" {
			service = internalService(detail.ServiceType)
		}

		currency := charge.Currency
		if currency == "" {
			currency = "USD"
		}

		quotes = append(quotes, carrier.RateQuote{
			Service:  service,
			Amount:   *charge.Amount,
			Currency: currency,
		})
	}
	return quotes
}

// shipReply mirrors the fields of the shipment creation response the
// gateway reads.
type shipReply struct {
	Output struct {
		TransactionShipments []struct {
			MasterTrackingNumber string `json:"masterTrackingNumber"`
			PieceResponses       []struct {
				TrackingNumber   string `json:"trackingNumber"`
				PackageDocuments []struct {
					EncodedLabel string `json:"encodedLabel"`
				} `json:"packageDocuments"`
			} `json:"pieceResponses"`
		} `json:"transactionShipments"`
	} `json:"output"`
}

// parseTrackingNumber prefers the shipment-level master tracking number and
// falls back to the first piece-level one.
func parseTrackingNumber(body []byte) (string, bool) {
	var reply shipReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", false
	}
	shipments := reply.Output.TransactionShipments
	if len(shipments) == 0 {
		return "", false
	}
	if master := shipments[0].MasterTrackingNumber; master != "" {
		return master, true
	}
	if pieces := shipments[0].PieceResponses; len(pieces) > 0 && pieces[0].TrackingNumber != "" {
		return pieces[0].TrackingNumber, true
	}
	return "", false
}

// parseLabel decodes the first piece's first package document label.
func parseLabel(body []byte) ([]byte, bool) {
	var reply shipReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, false
	}
	shipments := reply.Output.TransactionShipments
	if len(shipments) == 0 || len(shipments[0].PieceResponses) == 0 {
		return nil, false
	}
	docs := shipments[0].PieceResponses[0].PackageDocuments
	if len(docs) == 0 || docs[0].EncodedLabel == "" {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(docs[0].EncodedLabel)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// podReply mirrors the proof-of-delivery document response.
type podReply struct {
	Output struct {
		Documents []string `json:"documents"`
	} `json:"output"`
}

// parsePOD decodes the first proof-of-delivery document's content. Absence
// is reported to the gateway, which persists the raw body instead.
func parsePOD(body []byte) ([]byte, bool) {
	var reply podReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, false
	}
	if len(reply.Output.Documents) == 0 || reply.Output.Documents[0] == "" {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(reply.Output.Documents[0])
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// parseTrackDetail decodes the raw tracking body into an unshaped map.
func parseTrackDetail(body []byte) (carrier.TrackingDetail, bool) {
	var detail map[string]any
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, false
	}
	return carrier.TrackingDetail(detail), true
}
