// File: internal/nlp/tables.go
package nlp

import "github.com/xkilldash9x/autopentest/api/schemas"

// categoryKeywords maps each command category to its recognition vocabulary.
// Declaration order matters: keyword-overlap ties are broken by the first
// category with the maximum score, so the table is a slice, not a map.
// Single words are matched against the token set; multi-word entries are
// matched as substrings of the normalized text.
var categoryKeywords = []struct {
	Category schemas.CommandCategory
	Keywords []string
}{
	{schemas.CategoryRecon, []string{
		"reconnaissance", "recon", "enumerate", "enumeration", "discover",
		"discovery", "footprint", "footprinting", "osint", "fingerprint",
		"drones", "surveillance", "port scan", "ping sweep", "host discovery",
	}},
	{schemas.CategoryScan, []string{
		"pentest", "assessment", "audit", "scan", "penetration test",
		"security test", "full scan", "security assessment",
	}},
	{schemas.CategoryVuln, []string{
		"vulnerability", "vulnerabilities", "vuln", "vulns", "cve", "nuclei",
		"sqlmap", "weakness", "weaknesses", "flaw", "flaws", "infiltrate",
		"breach", "breaches", "mainframe", "sql injection", "security holes",
	}},
	{schemas.CategoryWeb, []string{
		"web", "website", "webapp", "xss", "csrf", "nikto", "burp", "gobuster",
		"http", "https", "web application", "web app", "cross-site scripting",
		"directory brute",
	}},
	{schemas.CategoryPayload, []string{
		"payload", "payloads", "shellcode", "msfvenom", "meterpreter",
		"backdoor", "implant", "reverse shell", "bind shell", "c2 beacon",
	}},
	{schemas.CategoryMobile, []string{
		"mobile", "android", "ios", "apk", "ipa", "frida", "objection",
		"mobile app", "app security", "dynamic analysis",
	}},
	{schemas.CategoryWireless, []string{
		"wifi", "wireless", "wpa", "wpa2", "wep", "handshake", "handshakes",
		"aircrack", "aircrack-ng", "deauth", "ssid", "bluetooth", "access point",
	}},
	{schemas.CategoryComplex, []string{
		"redteam", "apt", "campaign", "red team", "persistent threat",
		"multi-stage", "lateral movement", "kill chain", "adversary simulation",
		"red team operation",
	}},
}

// modifierVocab maps surface keywords to canonical modifier names. Scanned
// in declaration order so the emitted modifier list is stable for a given
// input.
var modifierVocab = []struct {
	Canonical string
	Keywords  []string
}{
	{"stealth", []string{"stealth", "stealthy", "stealthily", "quiet", "quietly", "passive", "covert", "covertly"}},
	{"aggressive", []string{"aggressive", "aggressively", "noisy", "loud"}},
	{"quick", []string{"quick", "quickly", "fast", "rapid", "rapidly"}},
	{"comprehensive", []string{"comprehensive", "thorough", "complete", "full", "deep", "exhaustive"}},
	{"evasive", []string{"evasive", "evasion", "evade", "bypass", "antivirus"}},
}

// domainDenylist filters bare-domain matches that show up in prose without
// being real targets. Deliberately short: example.com and friends stay
// extractable because operators routinely point the tool at them in labs.
var domainDenylist = map[string]struct{}{
	"localhost":             {},
	"localhost.localdomain": {},
	"example.invalid":       {},
	"test.invalid":          {},
	"schema.org":            {},
	"w3.org":                {},
	"www.w3.org":            {},
}
