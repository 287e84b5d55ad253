package sqlguard

import "regexp"

// dangerousFunctions are scanned as case-insensitive substrings of the raw
// SQL text. They cover file I/O, COPY, and remote-execution primitives that
// must never reach the database regardless of what the AST says.
var dangerousFunctions = []string{
	"pg_read_file",
	"pg_read_binary_file",
	"pg_ls_dir",
	"pg_stat_file",
	"lo_import",
	"lo_export",
	"copy ",
	"dblink",
	"pg_sleep",
	"pg_terminate_backend",
	"pg_cancel_backend",
	"pg_reload_conf",
}

type injectionPattern struct {
	re     *regexp.Regexp
	reason string
	// RE2 has no backreferences, so tautologies capture both operands and
	// equality is confirmed in code.
	equalOperands bool
}

// injectionPatterns are defense-in-depth on top of the AST checks, not a
// substitute for them.
var injectionPatterns = []injectionPattern{
	{
		re:     regexp.MustCompile(`(?i);\s*(insert|update|delete|drop|alter|create|truncate|grant|revoke)\b`),
		reason: "statement chaining into a mutating verb",
	},
	{
		re:     regexp.MustCompile(`(?i)\bunion\b[\s(]*(all[\s(]+)?select\b`),
		reason: "UNION-based exfiltration",
	},
	{
		re:            regexp.MustCompile(`(?i)\b(?:or|and)\s+(\d+)\s*=\s*(\d+)\b`),
		reason:        "always-true tautology",
		equalOperands: true,
	},
	{
		re:            regexp.MustCompile(`(?i)\b(?:or|and)\s+'([^']*)'\s*=\s*'([^']*)'`),
		reason:        "always-true tautology",
		equalOperands: true,
	},
	{
		re:     regexp.MustCompile(`--|/\*`),
		reason: "comment-based truncation",
	},
	{
		re:     regexp.MustCompile(`(?i)\b(xp_cmdshell|sp_executesql|exec\s*\(|execute\s+immediate)\b`),
		reason: "stored-procedure or command-shell marker",
	},
	{
		re:     regexp.MustCompile(`(?i)\binto\s+(out|dump)file\b`),
		reason: "file-dump redirection",
	},
}

// matchInjection returns the first matching pattern's reason, or "".
func matchInjection(sql string) string {
	for _, p := range injectionPatterns {
		if !p.equalOperands {
			if p.re.MatchString(sql) {
				return p.reason
			}
			continue
		}
		for _, m := range p.re.FindAllStringSubmatch(sql, -1) {
			if len(m) >= 3 && m[1] == m[2] {
				return p.reason
			}
		}
	}
	return ""
}
