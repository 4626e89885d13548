package fedex

import (
	"encoding/base64"
	"net/url"

	"github.com/shiplink/fedexgate/pkg/carrier"
)

// Carrier constants shared by the builders. FedEx expects these verbatim.
const (
	pickupType       = "USE_SCHEDULED_PICKUP"
	packagingType    = "YOUR_PACKAGING"
	labelImageType   = "PDF"
	labelStockType   = "PAPER_4X6"
	paymentSender    = "SENDER"
	returnTypeLabel  = "PRINT_RETURN_LABEL"
	podDocumentType  = "SIGNATURE_PROOF_OF_DELIVERY"
	defaultCurrency  = "EUR"
	brokerTypeImport = "IMPORT"
)

// Special service type strings.
const (
	ssBrokerSelect        = "BROKER_SELECT_OPTION"
	ssThirdPartyConsignee = "THIRD_PARTY_CONSIGNEE"
	ssEventNotification   = "EVENT_NOTIFICATION"
	ssElectronicTradeDocs = "ELECTRONIC_TRADE_DOCUMENTS"
)

// notificationEvents is the fixed event set subscribed for every email
// notification recipient.
var notificationEvents = []string{"ON_SHIPMENT", "ON_EXCEPTION", "ON_DELIVERY"}

// etdDocumentTypes is the fixed document type list requested when trade
// documents are attached.
var etdDocumentTypes = []string{"COMMERCIAL_INVOICE"}

// placeholderCommodity keeps a customs request well-formed when the caller
// supplied no commodity lines.
var placeholderCommodity = Commodity{
	Description:   "General merchandise",
	Quantity:      1,
	QuantityUnits: "PCS",
}

// The builders are pure: identical inputs yield byte-identical payloads, no
// network or persistence side effects, so each is unit-testable against a
// fixed expected payload.

// buildTokenForm builds the OAuth2 client-credentials form body.
func buildTokenForm(cred carrier.Credential) url.Values {
	return url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {cred.ClientID},
		"client_secret": {cred.ClientSecret},
	}
}

// buildRateRequest builds the rate quote payload. When req.Service is empty
// the carrier is asked for every available service, with both the
// contracted-account and list rate types requested.
func buildRateRequest(cred carrier.Credential, req *carrier.QuoteRequest) (*RateRequest, error) {
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	out := &RateRequest{
		AccountNumber: AccountNumber{Value: cred.AccountNumber},
		RequestedShipment: RateShipment{
			Shipper: wireParty(req.Shipper, true),
			Recipient: WireParty{
				Address: WireAddress{
					PostalCode:  req.DestinationPostal,
					CountryCode: req.DestinationCountry,
				},
			},
			PickupType:        pickupType,
			PreferredCurrency: currency,
			RequestedPackageLineItems: []PackageLineItem{
				{Weight: Weight{Units: "KG", Value: req.WeightKG}},
			},
		},
	}

	if req.Service != "" {
		svc, ok := carrierService(req.Service)
		if !ok {
			return nil, &carrier.UnsupportedServiceError{Carrier: carrierName, Service: req.Service}
		}
		out.RequestedShipment.ServiceType = svc
	} else {
		out.RateRequestTypes = []string{"ACCOUNT", "LIST"}
	}

	return out, nil
}

// buildShipRequest builds the shipment creation payload, including the
// return, special-service and customs variants.
func buildShipRequest(cred carrier.Credential, req *carrier.ShipmentRequest) (*ShipRequest, error) {
	svc, ok := carrierService(req.Service)
	if !ok {
		return nil, &carrier.UnsupportedServiceError{Carrier: carrierName, Service: req.Service}
	}

	shipment := ShipShipment{
		Shipper:       wireParty(req.Shipper, true),
		Recipients:    []WireParty{wireParty(req.Recipient, true)},
		ServiceType:   svc,
		PackagingType: packagingType,
		PickupType:    pickupType,
		ShippingChargesPayment: ChargesPayment{
			PaymentType: paymentSender,
			Payor: &PaymentPayor{
				ResponsibleParty: ResponsibleParty{
					AccountNumber: AccountNumber{Value: cred.AccountNumber},
				},
			},
		},
		LabelSpecification: LabelSpecification{
			ImageType:      labelImageType,
			LabelStockType: labelStockType,
		},
		RequestedPackageLineItems: []PackageLineItem{
			{Weight: Weight{Units: "KG", Value: req.WeightKG}},
		},
	}

	// Freight-class services carry the shipment-level total weight.
	if isFreight(req.Service) {
		w := req.WeightKG
		shipment.TotalWeight = &w
	}

	if req.IsReturn {
		// A return ships under the carrier's return service regardless of
		// the requested code.
		retSvc, _ := carrierService(carrier.ServiceReturns)
		shipment.ServiceType = retSvc
		shipment.ReturnShipmentDetail = &ReturnShipmentDetail{
			ReturnType: returnTypeLabel,
			RMA:        &RMADetail{Reason: req.ReturnReference},
		}
	}

	if special := buildSpecialServices(req); special != nil {
		shipment.ShipmentSpecialServices = special
	}

	if req.Customs != nil {
		shipment.CustomsClearanceDetail = buildCustoms(req.Customs)
	}

	return &ShipRequest{
		LabelResponseOptions: "LABEL",
		AccountNumber:        AccountNumber{Value: cred.AccountNumber},
		RequestedShipment:    shipment,
	}, nil
}

// buildSpecialServices aggregates the requested special-service blocks.
// Returns nil when the shipment requests none.
func buildSpecialServices(req *carrier.ShipmentRequest) *SpecialServicesDetail {
	out := &SpecialServicesDetail{}

	if req.Special.BrokerSelect && req.Broker != nil {
		out.SpecialServiceTypes = append(out.SpecialServiceTypes, ssBrokerSelect)
		out.Brokers = []BrokerNode{
			{Broker: wireParty(req.Broker.Party, true), Type: brokerTypeImport},
		}
	}

	if req.Special.ThirdPartyConsignee {
		out.SpecialServiceTypes = append(out.SpecialServiceTypes, ssThirdPartyConsignee)
	}

	var notifications []EventNotification
	for _, addr := range req.Special.EmailNotifications {
		if addr == "" {
			continue
		}
		notifications = append(notifications, EventNotification{
			EmailAddress: addr,
			Events:       notificationEvents,
		})
	}
	if len(notifications) > 0 {
		out.SpecialServiceTypes = append(out.SpecialServiceTypes, ssEventNotification)
		out.EventNotificationDetail = &EventNotificationDetail{EventNotifications: notifications}
	}

	if len(req.Special.TradeDocuments) > 0 {
		out.SpecialServiceTypes = append(out.SpecialServiceTypes, ssElectronicTradeDocs)
		etd := &EtdDetail{RequestedDocumentTypes: etdDocumentTypes}
		for _, doc := range req.Special.TradeDocuments {
			etd.AttachedDocuments = append(etd.AttachedDocuments, AttachedDocument{
				DocumentType: etdDocumentTypes[0],
				Reference:    doc.Reference,
				Content:      base64.StdEncoding.EncodeToString(doc.Content),
			})
		}
		out.EtdDetail = etd
	}

	if len(out.SpecialServiceTypes) == 0 {
		return nil
	}
	return out
}

// buildCustoms builds the customs-clearance block from the caller's
// commodity lines, normalizing each to description plus optional quantity,
// unit price, computed customs value and weight. With no lines supplied a
// single placeholder commodity keeps the request well-formed.
func buildCustoms(customs *carrier.Customs) *CustomsClearanceDetail {
	detail := &CustomsClearanceDetail{
		DutiesPayment: ChargesPayment{PaymentType: paymentSender},
	}

	if len(customs.Lines) == 0 {
		detail.Commodities = []Commodity{placeholderCommodity}
		return detail
	}

	for _, line := range customs.Lines {
		currency := line.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		c := Commodity{
			Description: line.Description,
		}
		if line.Quantity > 0 {
			c.Quantity = line.Quantity
			c.QuantityUnits = "PCS"
		}
		if line.UnitPrice > 0 {
			c.UnitPrice = &Money{Amount: line.UnitPrice, Currency: currency}
			qty := line.Quantity
			if qty == 0 {
				qty = 1
			}
			c.CustomsValue = &Money{Amount: line.UnitPrice * float64(qty), Currency: currency}
		}
		if line.WeightKG > 0 {
			c.Weight = &Weight{Units: "KG", Value: line.WeightKG}
		}
		detail.Commodities = append(detail.Commodities, c)
	}
	return detail
}

// buildTrackRequest wraps a tracking number in the lookup envelope.
func buildTrackRequest(trackingNumber string) *TrackRequest {
	return &TrackRequest{
		IncludeDetailedScans: true,
		TrackingInfo: []TrackingInfo{
			{TrackingNumberInfo: TrackingNumberInfo{TrackingNumber: trackingNumber}},
		},
	}
}

// buildPODRequest requests the signature proof-of-delivery document as PDF.
func buildPODRequest(trackingNumber string) *PODRequest {
	return &PODRequest{
		TrackDocumentDetail: TrackDocumentDetail{
			DocumentType:   podDocumentType,
			DocumentFormat: "PDF",
		},
		TrackDocumentSpecification: []TrackingInfo{
			{TrackingNumberInfo: TrackingNumberInfo{TrackingNumber: trackingNumber}},
		},
	}
}

// wireParty converts a domain party to the carrier node. withContact drops
// the contact block when the party has no contact data.
func wireParty(p carrier.Party, withContact bool) WireParty {
	out := WireParty{
		Address: WireAddress{
			StreetLines: p.Address.StreetLines,
			City:        p.Address.City,
			StateCode:   p.Address.StateCode,
			PostalCode:  p.Address.PostalCode,
			CountryCode: p.Address.CountryCode,
			Residential: p.Address.Residential,
		},
	}
	if withContact && p.Contact != (carrier.Contact{}) {
		out.Contact = &WireContact{
			PersonName:   p.Contact.PersonName,
			CompanyName:  p.Contact.CompanyName,
			PhoneNumber:  p.Contact.Phone,
			EmailAddress: p.Contact.Email,
		}
	}
	return out
}
