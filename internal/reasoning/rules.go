// File: internal/reasoning/rules.go
package reasoning

// Context keys the default rules inspect. Values are the string forms of
// booleans produced by the agent's context snapshot.
const (
	keyVulnerabilityFound = "vulnerability_found"
	keyNoExploitationYet  = "no_exploitation_yet"
	keyIDSDetected        = "ids_detected"
	keyInternalAccess     = "internal_access"
	keyMultipleSubnets    = "multiple_subnets"
	keyCredsCaptured      = "credentials_captured"
	keyWAFDetected        = "waf_detected"
	keyShellObtained      = "shell_obtained"
	keyNoOpenPorts        = "no_open_ports"
	keyObjectivesComplete = "objectives_complete"
)

func ctxTrue(ctx map[string]string, key string) bool {
	return ctx[key] == "true"
}

// defaultRules is the fixed rule table in declaration order. Order matters:
// it is the tie-break for equal adjusted confidence.
func defaultRules() []Rule {
	return []Rule{
		{
			ID: "conclude-on-objectives",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyObjectivesComplete)
			},
			Action:         StopAction,
			BaseConfidence: 0.95,
			Rationale:      "all stated objectives are complete; wrap up and report",
		},
		{
			ID: "exploit-discovered-vuln",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyVulnerabilityFound) && ctxTrue(ctx, keyNoExploitationYet)
			},
			Action:         "generate_payload",
			BaseConfidence: 0.9,
			Rationale:      "a vulnerability was found but not yet exploited; prepare a payload",
		},
		{
			ID: "go-quiet-on-ids",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyIDSDetected)
			},
			Action:         "switch_to_passive",
			BaseConfidence: 0.85,
			Rationale:      "intrusion detection tripped; active probing risks burning the engagement",
		},
		{
			ID: "pivot-internal",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyInternalAccess) && ctxTrue(ctx, keyMultipleSubnets)
			},
			Action:         "lateral_movement",
			BaseConfidence: 0.8,
			Rationale:      "internal foothold with reachable subnets; expand laterally",
		},
		{
			ID: "replay-captured-creds",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyCredsCaptured)
			},
			Action:         "credential_replay",
			BaseConfidence: 0.75,
			Rationale:      "captured credentials should be validated against adjacent services",
		},
		{
			ID: "escalate-from-shell",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyShellObtained)
			},
			Action:         "escalate_privileges",
			BaseConfidence: 0.7,
			Rationale:      "a user shell exists; attempt privilege escalation",
		},
		{
			ID: "tamper-past-waf",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyWAFDetected)
			},
			Action:         "tamper_encoding",
			BaseConfidence: 0.65,
			Rationale:      "a WAF is filtering requests; retry with encoding tampering",
		},
		{
			ID: "widen-scan-scope",
			When: func(ctx map[string]string) bool {
				return ctxTrue(ctx, keyNoOpenPorts)
			},
			Action:         "expand_scan_scope",
			BaseConfidence: 0.6,
			Rationale:      "nothing answered on the scanned ports; widen the port and host range",
		},
	}
}
