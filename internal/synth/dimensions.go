package synth

// Dimension tables for background event synthesis. Port, transport protocol
// and application protocol are drawn jointly so rows never pair DNS with 443.

type portService struct {
	Port     uint16
	Protocol string
	App      string
}

var portServices = []portService{
	{80, "TCP", "HTTP"},
	{443, "TCP", "HTTPS"},
	{22, "TCP", "SSH"},
	{21, "TCP", "FTP"},
	{25, "TCP", "SMTP"},
	{53, "UDP", "DNS"},
	{110, "TCP", "POP3"},
	{143, "TCP", "IMAP"},
	{445, "TCP", "SMB"},
	{3389, "TCP", "RDP"},
	{389, "TCP", "LDAP"},
	{5432, "TCP", "PostgreSQL"},
	{3306, "TCP", "MySQL"},
	{123, "UDP", "NTP"},
}

// Web traffic dominates, then encrypted shells and DNS
var portServiceWeights = []float64{
	0.25, 0.35, 0.08, 0.01, 0.03, 0.12, 0.01, 0.02, 0.04, 0.02, 0.02, 0.02, 0.02, 0.01,
}

var connectionStates = []string{
	"ESTABLISHED", "SYN_SENT", "SYN_RECV", "FIN_WAIT1",
	"FIN_WAIT2", "TIME_WAIT", "CLOSE", "CLOSE_WAIT", "LAST_ACK", "LISTEN",
}

var legitimateDomains = []string{
	"github.com", "stackoverflow.com", "aws.amazon.com",
	"google.com", "microsoft.com", "slack.com",
}

// externalGeo is a plausible location for benign external destinations
type externalGeo struct {
	Country   string
	City      string
	Latitude  float64
	Longitude float64
}

var externalGeos = []externalGeo{
	{"United States", "Ashburn", 39.04, -77.49},
	{"United States", "Seattle", 47.61, -122.33},
	{"Germany", "Frankfurt", 50.11, 8.68},
	{"Ireland", "Dublin", 53.35, -6.26},
	{"Japan", "Tokyo", 35.68, 139.69},
	{"Netherlands", "Amsterdam", 52.37, 4.90},
}

// Office coordinates keyed by location, matching the catalog office table
var officeGeos = map[string]externalGeo{
	"headquarters": {"United States", "San Francisco", 37.77, -122.42},
	"east_coast":   {"United States", "New York", 40.71, -74.01},
	"europe":       {"United Kingdom", "London", 51.51, -0.13},
	"apac":         {"Singapore", "Singapore", 1.35, 103.82},
}

var (
	authMethods = []string{"password", "sso", "certificate", "api_key"}

	authResults       = []string{"success", "failure", "locked", "expired"}
	authResultWeights = []float64{0.9, 0.07, 0.02, 0.01}

	failureReasons = map[string][]string{
		"failure": {"invalid_password", "mfa_failure", "unknown_user"},
		"locked":  {"account_locked"},
		"expired": {"expired_credentials"},
	}

	mfaMethods        = []string{"totp", "push", "sms", "none"}
	deviceTrustLevels = []string{"trusted", "managed", "unmanaged", "unknown"}
)

// First octets used for benign external addresses; none are RFC 1918
var publicFirstOctets = []int{23, 34, 52, 64, 104, 142, 151, 199, 203, 208}
