package catalog

// Fixed dimension tables the entity catalogs are sampled from. Weights are
// relative and consumed by randutil.WeightedChoice.

var Departments = []string{
	"Engineering", "Sales", "Marketing", "Finance", "HR", "Legal",
	"Operations", "Security", "IT", "Executive", "Support", "Research",
}

var RolesByDepartment = map[string][]string{
	"Engineering": {"Software Engineer", "Senior Engineer", "Tech Lead", "Engineering Manager", "DevOps Engineer"},
	"Sales":       {"Sales Rep", "Account Manager", "Sales Manager", "VP Sales"},
	"Marketing":   {"Marketing Specialist", "Content Creator", "Marketing Manager", "VP Marketing"},
	"Finance":     {"Accountant", "Financial Analyst", "Finance Manager", "CFO"},
	"HR":          {"HR Coordinator", "Recruiter", "HR Manager", "VP HR"},
	"Legal":       {"Legal Counsel", "Paralegal", "General Counsel"},
	"Operations":  {"Operations Analyst", "Operations Manager", "VP Operations"},
	"Security":    {"Security Analyst", "Security Engineer", "CISO"},
	"IT":          {"IT Support", "System Administrator", "IT Manager", "CTO"},
	"Executive":   {"CEO", "President", "VP"},
	"Support":     {"Support Rep", "Senior Support", "Support Manager"},
	"Research":    {"Researcher", "Data Scientist", "Research Manager"},
}

var (
	EmploymentTypes       = []string{"full_time", "contractor", "temp"}
	EmploymentTypeWeights = []float64{0.8, 0.15, 0.05}

	SecurityClearances       = []string{"none", "confidential", "secret", "top_secret"}
	SecurityClearanceWeights = []float64{0.7, 0.2, 0.08, 0.02}
)

// Title substrings that mark a user as privileged
var privilegedTitleMarkers = []string{
	"Manager", "VP", "Lead", "CEO", "CFO", "CTO", "CISO", "President", "Counsel",
}

// Office is one corporate location. SubnetPrefix is the first two octets of its
// internal /16.
type Office struct {
	Key          string
	City         string
	Country      string
	Timezone     string
	SubnetPrefix string
}

var Offices = []Office{
	{Key: "headquarters", City: "San Francisco", Country: "United States", Timezone: "America/Los_Angeles", SubnetPrefix: "10.1"},
	{Key: "east_coast", City: "New York", Country: "United States", Timezone: "America/New_York", SubnetPrefix: "10.2"},
	{Key: "europe", City: "London", Country: "United Kingdom", Timezone: "Europe/London", SubnetPrefix: "10.3"},
	{Key: "apac", City: "Singapore", Country: "Singapore", Timezone: "Asia/Singapore", SubnetPrefix: "10.4"},
}

var OfficeWeights = []float64{0.4, 0.3, 0.2, 0.1}

// OfficeByKey resolves an office location key; falls back to headquarters for
// unknown keys so event synthesis never dereferences a missing office.
func OfficeByKey(key string) Office {
	for _, o := range Offices {
		if o.Key == key {
			return o
		}
	}
	return Offices[0]
}

// ThreatLocation is an adversary origin used for injected scenario traffic
type ThreatLocation struct {
	City        string
	Country     string
	ThreatLevel string
}

var ThreatLocations = []ThreatLocation{
	{City: "Unknown", Country: "Russia", ThreatLevel: "high"},
	{City: "Unknown", Country: "China", ThreatLevel: "high"},
	{City: "Unknown", Country: "North Korea", ThreatLevel: "critical"},
	{City: "Tor Exit Node", Country: "Various", ThreatLevel: "medium"},
	{City: "Unknown", Country: "Iran", ThreatLevel: "high"},
}

var ThreatIntelSources = []string{
	"VirusTotal", "AlienVault OTX", "ThreatCrowd", "IBM X-Force",
	"Recorded Future", "CrowdStrike", "FireEye", "Mandiant",
	"Symantec", "Kaspersky", "SANS ISC", "Abuse.ch",
}

var MalwareFamilies = []string{
	"APT1", "Lazarus", "Carbanak", "FIN7", "Cobalt Strike", "Emotet",
	"TrickBot", "Ryuk", "Maze", "Sodinokibi", "DarkSide", "Conti",
}

// Curated bad infrastructure. These exact values also back scenario injection,
// which is what guarantees injected traffic always matches an indicator.
var (
	MaliciousIPs = []string{
		"45.133.203.192", "185.220.101.32", "198.98.51.189",
		"103.253.27.108", "94.102.61.38", "178.128.83.165",
	}
	MaliciousDomains = []string{
		"evil-cdn.net", "malware-host.com", "phishing-site.org",
		"c2-server.info", "bad-actor.biz", "threat-domain.xyz",
	}

	IPThreatTypes     = []string{"malware", "c2", "scanning", "botnet"}
	DomainThreatTypes = []string{"phishing", "c2", "malware"}
	HashThreatTypes   = []string{"malware", "ransomware", "trojan"}
)

const HashIndicatorCount = 50

var (
	AssetTypes       = []string{"workstation", "server", "mobile", "iot"}
	AssetTypeWeights = []float64{0.6, 0.2, 0.15, 0.05}

	CriticalityLevels  = []string{"low", "medium", "high", "critical"}
	CriticalityWeights = []float64{0.4, 0.4, 0.15, 0.05}

	SecurityZones = []string{"corporate", "datacenter", "dmz", "guest"}
)

var OperatingSystemsByAssetType = map[string][]string{
	"workstation": {"Windows 10", "Windows 11", "macOS Monterey", "macOS Ventura", "Ubuntu 20.04"},
	"server":      {"Ubuntu 20.04", "CentOS 7", "Windows Server 2019", "RHEL 8"},
	"mobile":      {"iOS 15", "Android 12"},
	"iot":         {"Linux", "Embedded"},
}

var ServerServices = []string{"web", "db", "app", "mail", "file", "dns"}

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Carlos", "Karen", "Christopher", "Lisa", "Daniel", "Nancy",
	"Wei", "Priya", "Ahmed", "Yuki", "Olga", "Fatima", "Raj", "Mei",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Chen", "Patel", "Kim", "Nguyen",
	"Singh", "Kumar", "Tanaka", "Ivanov", "Ali", "Wang", "Park", "Sato",
}
