package config

import (
	"strings"
)

type Tier string

const (
	TierUAT  Tier = "UAT"
	TierProd Tier = "PROD"
)

// Endpoints of the enrollment service. Ship-to accounts with an even number are served by the
// first endpoint of each tier and odd ones by the second.
const (
	UATEndpointEven  = "https://api-applecareconnect-ept.apple.com/enroll-service/1.0"
	UATEndpointOdd   = "https://api-applecareconnect-ept2.apple.com/enroll-service/1.0"
	ProdEndpointEven = "https://api-applecareconnect.apple.com/enroll-service/1.0"
	ProdEndpointOdd  = "https://api-applecareconnect2.apple.com/enroll-service/1.0"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierUAT, TierProd:
		return Tier(s), nil
	case "":
		return "", missing("ENV")
	default:
		return "", &ConfigurationError{Setting: "ENV", Message: "unknown tier " + s + ", expected UAT or PROD"}
	}
}

type Credential struct {
	CertPath string `json:"certPath"`
	KeyPath  string `json:"keyPath"`
}

type RequestContext struct {
	ShipTo   string `json:"shipTo"`
	TimeZone string `json:"timeZone"`
	LangCode string `json:"langCode"`
}

type Environment struct {
	Tier           Tier           `json:"tier"`
	BaseURL        string         `json:"baseUrl"`
	Credential     Credential     `json:"credential"`
	ShipTo         string         `json:"shipTo"`
	ResellerID     string         `json:"resellerId"`
	RequestContext RequestContext `json:"requestContext"`
}

// Resolve derives the target environment from the configuration. All required settings are
// checked up front so no request is ever built from a partial configuration.
func (cfg Config) Resolve() (Environment, error) {
	tier, err := ParseTier(cfg.Env)
	if err != nil {
		return Environment{}, err
	}

	shipTo := strings.TrimSpace(cfg.ShipTo)
	if shipTo == "" {
		return Environment{}, missing("SHIPTO")
	}
	if !isDigits(shipTo) {
		return Environment{}, &ConfigurationError{Setting: "SHIPTO", Message: "ship-to must be numeric, got " + shipTo}
	}

	if cfg.ResellerID == "" {
		return Environment{}, missing("RESELLER_ID")
	}

	cred, err := cfg.credential(tier)
	if err != nil {
		return Environment{}, err
	}

	timeZone := cfg.TimeZone
	if timeZone == "" {
		timeZone = DefaultConfig().TimeZone
	}
	langCode := cfg.LangCode
	if langCode == "" {
		langCode = DefaultConfig().LangCode
	}

	return Environment{
		Tier:       tier,
		BaseURL:    baseURL(tier, shipTo),
		Credential: cred,
		ShipTo:     shipTo,
		ResellerID: cfg.ResellerID,
		RequestContext: RequestContext{
			ShipTo:   shipTo,
			TimeZone: timeZone,
			LangCode: langCode,
		},
	}, nil
}

func (cfg Config) credential(tier Tier) (Credential, error) {
	var cred Credential
	var certSetting, keySetting string

	switch tier {
	case TierUAT:
		cred = Credential{CertPath: cfg.UATCert, KeyPath: cfg.UATPrivateKey}
		certSetting, keySetting = "UAT_CERT", "UAT_PRIVATE_KEY"
	case TierProd:
		cred = Credential{CertPath: cfg.ProdCert, KeyPath: cfg.ProdPrivateKey}
		certSetting, keySetting = "PROD_CERT", "PROD_PRIVATE_KEY"
	}

	if cred.CertPath == "" {
		return Credential{}, missing(certSetting)
	}
	if cred.KeyPath == "" {
		return Credential{}, missing(keySetting)
	}
	return cred, nil
}

func baseURL(tier Tier, shipTo string) string {
	even := isEven(shipTo)
	switch {
	case tier == TierProd && even:
		return ProdEndpointEven
	case tier == TierProd:
		return ProdEndpointOdd
	case even:
		return UATEndpointEven
	default:
		return UATEndpointOdd
	}
}

// isEven looks at the last digit only, so ship-to numbers of any length work.
func isEven(digits string) bool {
	return (digits[len(digits)-1]-'0')%2 == 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
