package coverage

import (
	"path"
	"strings"
	"unicode"

	"qgate/internal/inventory"
)

// Kind is the role a source file plays in the project.
type Kind string

const (
	KindPage      Kind = "page"
	KindAPI       Kind = "api"
	KindComponent Kind = "component"
	KindLogic     Kind = "logic"
	KindConfig    Kind = "config"
	KindHook      Kind = "hook"
	KindModel     Kind = "model"
	KindOther     Kind = "other"
)

var (
	apiTokens       = tokenSet("api", "apis", "route", "routes", "router", "endpoint", "endpoints", "controller", "controllers", "handler", "handlers")
	hookTokens      = tokenSet("hook", "hooks")
	pageTokens      = tokenSet("page", "pages", "view", "views", "screen", "screens")
	componentTokens = tokenSet("component", "components", "widget", "widgets", "ui")
	modelTokens     = tokenSet("model", "models", "schema", "schemas", "entity", "entities")
	configTokens    = tokenSet("config", "configs", "configuration", "settings")
	logicTokens     = tokenSet("lib", "libs", "util", "utils", "helper", "helpers", "service", "services", "store", "stores", "domain", "core", "logic")

	componentExts = tokenSet(".tsx", ".jsx", ".vue", ".svelte")
)

// ClassifyKind infers a file's kind from its path. Checks run from the most
// specific role to the most generic; unmatched paths are KindOther.
func ClassifyKind(p string) Kind {
	p = inventory.NormalizePath(p)
	tokens := inventory.Tokens(p)

	switch {
	case hasAny(tokens, apiTokens):
		return KindAPI
	case isHookName(p) || hasAny(tokens, hookTokens):
		return KindHook
	case hasAny(tokens, pageTokens):
		return KindPage
	case hasAny(tokens, componentTokens):
		return KindComponent
	case hasAny(tokens, modelTokens):
		return KindModel
	case hasAny(tokens, configTokens):
		return KindConfig
	case hasAny(tokens, logicTokens):
		return KindLogic
	case componentExts[strings.ToLower(path.Ext(p))]:
		return KindComponent
	default:
		return KindOther
	}
}

// isHookName matches the useSomething naming convention.
func isHookName(p string) bool {
	name := inventory.BaseName(p)
	if len(name) < 4 || !strings.HasPrefix(name, "use") {
		return false
	}
	return unicode.IsUpper(rune(name[3]))
}

// KeywordGroup forces the maximum risk score on any path containing one of
// its tokens.
type KeywordGroup struct {
	Name   string   `json:"name" mapstructure:"name"`
	Tokens []string `json:"tokens" mapstructure:"tokens"`
}

// DefaultKeywordGroups returns the auth, payment, deploy and security groups.
func DefaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{Name: "auth", Tokens: []string{"auth", "authentication", "authorization", "login", "logout", "session", "sessions", "oauth", "password", "token", "tokens", "permission", "permissions"}},
		{Name: "payment", Tokens: []string{"payment", "payments", "billing", "checkout", "invoice", "invoices", "stripe", "subscription", "subscriptions"}},
		{Name: "deploy", Tokens: []string{"deploy", "deployment", "deployments", "release", "releases", "migration", "migrations"}},
		{Name: "security", Tokens: []string{"security", "crypto", "encryption", "secret", "secrets", "sanitize", "csrf"}},
	}
}

func matchGroups(tokens []string, groups []KeywordGroup) []string {
	var matched []string
	for _, g := range groups {
		if hasAny(tokens, tokenSet(g.Tokens...)) {
			matched = append(matched, g.Name)
		}
	}
	return matched
}

func tokenSet(tokens ...string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func hasAny(tokens []string, set map[string]bool) bool {
	for _, t := range tokens {
		if set[t] {
			return true
		}
	}
	return false
}
