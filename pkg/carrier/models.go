package carrier

// ServiceType is the internal mnemonic identifying a shipping product.
// The FedEx package maps these to carrier-defined service strings; other
// carrier implementations would carry their own mapping tables.
type ServiceType string

const (
	ServiceInternationalPriority        ServiceType = "FIP"
	ServiceInternationalPriorityExpress ServiceType = "IPE"
	ServiceInternationalEconomy         ServiceType = "FIE"
	ServiceRegionalEconomy              ServiceType = "RE"
	ServicePriorityOvernight            ServiceType = "PO"
	ServiceInternationalConnectPlus     ServiceType = "FICP"
	ServiceInternationalPriorityFreight ServiceType = "IPF"
	ServiceInternationalEconomyFreight  ServiceType = "IEF"
	ServiceRegionalEconomyFreight       ServiceType = "REF"
	ServiceGround                       ServiceType = "FG"
	ServiceReturns                      ServiceType = "RETURNS"
)

// Credential identifies one carrier account. It is immutable per call and
// owned by the caller's entity store; the gateway only reads it.
type Credential struct {
	AccountID     string // internal account identifier, used in audit records
	AccountNumber string // carrier billing account
	ClientID      string
	ClientSecret  string
	MeterNumber   string // optional, legacy accounts
	IsFreight     bool
}

// Address is a postal identity.
type Address struct {
	StreetLines []string
	City        string
	StateCode   string
	PostalCode  string
	CountryCode string // ISO 3166-1 alpha-2
	Residential bool
}

// Contact holds the person or company attached to an address.
type Contact struct {
	PersonName  string
	CompanyName string
	Phone       string
	Email       string
}

// Party is the single postal-identity value type used for shippers,
// recipients, brokers and ad-hoc return senders alike. Callers construct it
// from whichever underlying entity applies.
type Party struct {
	Contact Contact
	Address Address
}

// CustomsLine is one commodity line of a customs declaration.
type CustomsLine struct {
	Description string
	Quantity    int
	UnitPrice   float64
	WeightKG    float64
	Currency    string
}

// Customs carries the customs-clearance data for an international shipment.
// An empty Lines slice is legal; the builder substitutes a placeholder
// commodity so the carrier request stays well-formed.
type Customs struct {
	Lines []CustomsLine
}

// Broker designates a customs broker for the broker-select special service.
type Broker struct {
	Party         Party
	AccountNumber string
}

// TradeDocument is an electronically uploaded customs document attached to a
// shipment in place of physical paperwork.
type TradeDocument struct {
	Reference string
	Content   []byte // raw bytes; the builder base64-encodes them inline
}

// SpecialServices aggregates the optional carrier special-service flags of a
// shipment. The zero value requests none of them.
type SpecialServices struct {
	BrokerSelect        bool
	ThirdPartyConsignee bool
	EmailNotifications  []string // one notification entry per non-empty address
	TradeDocuments      []TradeDocument
}

// QuoteRequest asks for rate quotes. Service is optional: when empty the
// carrier is asked to return every available service.
type QuoteRequest struct {
	Shipper            Party
	DestinationPostal  string
	DestinationCountry string
	WeightKG           float64
	Service            ServiceType // optional
	Currency           string      // preferred currency, defaults to EUR
}

// ShipmentRequest carries everything needed to create one shipment. It is
// constructed fresh per call and not retained by the gateway.
type ShipmentRequest struct {
	ShipmentID string // caller-side identifier, used for the label file name
	Shipper    Party
	Recipient  Party
	Service    ServiceType
	WeightKG   float64

	Customs  *Customs // nil when no customs clearance is required
	Broker   *Broker  // required when Special.BrokerSelect is set
	Special  SpecialServices
	IsReturn bool
	// ReturnReference is the RMA reason attached to a return shipment.
	ReturnReference string
}

// RateQuote is one priced service option returned by the carrier.
type RateQuote struct {
	Service  ServiceType
	Amount   float64
	Currency string
}

// ShipmentResult is the outcome of a successful shipment creation. Both
// fields are always populated.
type ShipmentResult struct {
	TrackingNumber string
	LabelPath      string
}

// TrackingDetail is the raw carrier tracking payload, decoded but otherwise
// unshaped. Callers pick the fields they need.
type TrackingDetail map[string]any
