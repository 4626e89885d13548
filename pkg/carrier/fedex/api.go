package fedex

import (
	"context"
	"net/url"
)

// FedEx REST endpoints. The gateway audits outbound calls under these paths.
const (
	EndpointToken           = "/oauth/token"
	EndpointRates           = "/rate/v1/rates/quotes"
	EndpointShipments       = "/ship/v1/shipments"
	EndpointTracking        = "/track/v1/trackingnumbers"
	EndpointProofOfDelivery = "/track/v1/trackingdocuments"
)

// APIResponse is one raw HTTP exchange result. The gateway owns parsing and
// auditing of the body, so the transport hands it back unmodified.
type APIResponse struct {
	StatusCode int
	Body       []byte
}

// APIClient defines the FedEx transport operations. The abstraction allows
// mock implementations during testing and the real HTTP client in
// production; responses come back raw so every call can be audited and
// parsed by the gateway.
type APIClient interface {
	// Token performs the OAuth2 client-credentials exchange.
	Token(ctx context.Context, form url.Values) (*APIResponse, error)

	// Rates posts a rate quote request.
	Rates(ctx context.Context, bearer string, req *RateRequest) (*APIResponse, error)

	// CreateShipment posts a shipment creation request.
	CreateShipment(ctx context.Context, bearer string, req *ShipRequest) (*APIResponse, error)

	// Track posts a tracking lookup.
	Track(ctx context.Context, bearer string, req *TrackRequest) (*APIResponse, error)

	// ProofOfDelivery posts a proof-of-delivery document request.
	ProofOfDelivery(ctx context.Context, bearer string, req *PODRequest) (*APIResponse, error)
}

// ============================================================================
// Wire types (match the FedEx REST API JSON structure)
// ============================================================================

// AccountNumber wraps the carrier billing account.
type AccountNumber struct {
	Value string `json:"value"`
}

// WireAddress is the carrier address node.
type WireAddress struct {
	StreetLines []string `json:"streetLines,omitempty"`
	City        string   `json:"city,omitempty"`
	StateCode   string   `json:"stateOrProvinceCode,omitempty"`
	PostalCode  string   `json:"postalCode,omitempty"`
	CountryCode string   `json:"countryCode,omitempty"`
	Residential bool     `json:"residential,omitempty"`
}

// WireContact is the carrier contact node.
type WireContact struct {
	PersonName   string `json:"personName,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// WireParty pairs contact and address the way FedEx shipper/recipient nodes do.
type WireParty struct {
	Contact *WireContact `json:"contact,omitempty"`
	Address WireAddress  `json:"address"`
}

// Weight is the carrier weight node, always metric here.
type Weight struct {
	Units string  `json:"units"`
	Value float64 `json:"value"`
}

// Money is the carrier monetary amount node.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PackageLineItem is one requested package.
type PackageLineItem struct {
	Weight Weight `json:"weight"`
}

// ChargesPayment states who pays for the shipment or duties.
type ChargesPayment struct {
	PaymentType string        `json:"paymentType"`
	Payor       *PaymentPayor `json:"payor,omitempty"`
}

// PaymentPayor names the responsible party of a payment.
type PaymentPayor struct {
	ResponsibleParty ResponsibleParty `json:"responsibleParty"`
}

// ResponsibleParty carries the payor's account.
type ResponsibleParty struct {
	AccountNumber AccountNumber `json:"accountNumber"`
}

// LabelSpecification requests a label rendering.
type LabelSpecification struct {
	ImageType      string `json:"imageType"`
	LabelStockType string `json:"labelStockType"`
}

// RateRequest is the rate quote request body.
// POST /rate/v1/rates/quotes
type RateRequest struct {
	AccountNumber     AccountNumber `json:"accountNumber"`
	RateRequestTypes  []string      `json:"rateRequestType,omitempty"`
	RequestedShipment RateShipment  `json:"requestedShipment"`
}

// RateShipment is the requestedShipment node of a rate request.
type RateShipment struct {
	Shipper                   WireParty         `json:"shipper"`
	Recipient                 WireParty         `json:"recipient"`
	ServiceType               string            `json:"serviceType,omitempty"`
	PickupType                string            `json:"pickupType"`
	PreferredCurrency         string            `json:"preferredCurrency"`
	RequestedPackageLineItems []PackageLineItem `json:"requestedPackageLineItems"`
}

// ShipRequest is the shipment creation request body.
// POST /ship/v1/shipments
type ShipRequest struct {
	LabelResponseOptions string        `json:"labelResponseOptions"`
	AccountNumber        AccountNumber `json:"accountNumber"`
	RequestedShipment    ShipShipment  `json:"requestedShipment"`
}

// ShipShipment is the requestedShipment node of a shipment creation request.
type ShipShipment struct {
	Shipper                   WireParty               `json:"shipper"`
	Recipients                []WireParty             `json:"recipients"`
	ServiceType               string                  `json:"serviceType"`
	PackagingType             string                  `json:"packagingType"`
	PickupType                string                  `json:"pickupType"`
	ShippingChargesPayment    ChargesPayment          `json:"shippingChargesPayment"`
	LabelSpecification        LabelSpecification      `json:"labelSpecification"`
	TotalWeight               *float64                `json:"totalWeight,omitempty"`
	ReturnShipmentDetail      *ReturnShipmentDetail   `json:"returnShipmentDetail,omitempty"`
	ShipmentSpecialServices   *SpecialServicesDetail  `json:"shipmentSpecialServices,omitempty"`
	CustomsClearanceDetail    *CustomsClearanceDetail `json:"customsClearanceDetail,omitempty"`
	RequestedPackageLineItems []PackageLineItem       `json:"requestedPackageLineItems"`
}

// ReturnShipmentDetail marks a shipment as a return.
type ReturnShipmentDetail struct {
	ReturnType string     `json:"returnType"`
	RMA        *RMADetail `json:"rma,omitempty"`
}

// RMADetail carries the return merchandise authorization reference.
type RMADetail struct {
	Reason string `json:"reason"`
}

// SpecialServicesDetail aggregates requested shipment special services.
type SpecialServicesDetail struct {
	SpecialServiceTypes     []string                 `json:"specialServiceTypes"`
	Brokers                 []BrokerNode             `json:"brokers,omitempty"`
	EventNotificationDetail *EventNotificationDetail `json:"eventNotificationDetail,omitempty"`
	EtdDetail               *EtdDetail               `json:"etdDetail,omitempty"`
}

// BrokerNode designates a customs broker.
type BrokerNode struct {
	Broker WireParty `json:"broker"`
	Type   string    `json:"type"`
}

// EventNotificationDetail requests email alerts for shipment events.
type EventNotificationDetail struct {
	EventNotifications []EventNotification `json:"eventNotifications"`
}

// EventNotification is one email alert subscription.
type EventNotification struct {
	EmailAddress string   `json:"emailAddress"`
	Events       []string `json:"events"`
}

// EtdDetail attaches electronic trade documents.
type EtdDetail struct {
	RequestedDocumentTypes []string           `json:"requestedDocumentTypes"`
	AttachedDocuments      []AttachedDocument `json:"attachedDocuments,omitempty"`
}

// AttachedDocument is one inline base64 trade document.
type AttachedDocument struct {
	DocumentType string `json:"documentType"`
	Reference    string `json:"documentReference,omitempty"`
	Content      string `json:"content"`
}

// CustomsClearanceDetail carries the customs declaration.
type CustomsClearanceDetail struct {
	DutiesPayment ChargesPayment `json:"dutiesPayment"`
	Commodities   []Commodity    `json:"commodities"`
}

// Commodity is one customs commodity line.
type Commodity struct {
	Description   string  `json:"description"`
	Quantity      int     `json:"quantity,omitempty"`
	QuantityUnits string  `json:"quantityUnits,omitempty"`
	UnitPrice     *Money  `json:"unitPrice,omitempty"`
	CustomsValue  *Money  `json:"customsValue,omitempty"`
	Weight        *Weight `json:"weight,omitempty"`
}

// TrackRequest is the tracking lookup body.
// POST /track/v1/trackingnumbers
type TrackRequest struct {
	IncludeDetailedScans bool           `json:"includeDetailedScans"`
	TrackingInfo         []TrackingInfo `json:"trackingInfo"`
}

// TrackingInfo wraps one tracking number.
type TrackingInfo struct {
	TrackingNumberInfo TrackingNumberInfo `json:"trackingNumberInfo"`
}

// TrackingNumberInfo carries the tracking number itself.
type TrackingNumberInfo struct {
	TrackingNumber string `json:"trackingNumber"`
}

// PODRequest is the proof-of-delivery document request body.
// POST /track/v1/trackingdocuments
type PODRequest struct {
	TrackDocumentDetail        TrackDocumentDetail `json:"trackDocumentDetail"`
	TrackDocumentSpecification []TrackingInfo      `json:"trackDocumentSpecification"`
}

// TrackDocumentDetail names the requested document type and format.
type TrackDocumentDetail struct {
	DocumentType   string `json:"documentType"`
	DocumentFormat string `json:"documentFormat"`
}
