package csp

import "slices"

// Fetch directives
const (
	ChildSrc      = "child-src"
	ConnectSrc    = "connect-src"
	DefaultSrc    = "default-src"
	ScriptSrc     = "script-src"
	ScriptSrcAttr = "script-src-attr"
	ScriptSrcElem = "script-src-elem"
	ObjectSrc     = "object-src"
	StyleSrc      = "style-src"
	StyleSrcAttr  = "style-src-attr"
	StyleSrcElem  = "style-src-elem"
	FontSrc       = "font-src"
	FrameSrc      = "frame-src"
	ImgSrc        = "img-src"
	ManifestSrc   = "manifest-src"
	MediaSrc      = "media-src"
	PrefetchSrc   = "prefetch-src"
	WorkerSrc     = "worker-src"
)

// Document, navigation, reporting and other directives
const (
	BaseURI     = "base-uri"
	PluginTypes = "plugin-types"
	Sandbox     = "sandbox"

	FormAction     = "form-action"
	FrameAncestors = "frame-ancestors"
	NavigateTo     = "navigate-to"

	ReportURI = "report-uri"
	ReportTo  = "report-to"

	RequireSRIFor          = "require-sri-for"
	RequireTrustedTypesFor = "require-trusted-types-for"
	TrustedTypes           = "trusted-types"

	UpgradeInsecureRequests = "upgrade-insecure-requests"
	BlockAllMixedContent    = "block-all-mixed-content"
)

// Pseudo-directives control how a policy is built and emitted.
// They never appear in a header value.
const (
	ReportOnly         = "report_only"
	IncludeNonceIn     = "include_nonce_in"
	ExcludeURLPrefixes = "exclude_url_prefixes"
)

// Keyword sources.
const (
	SourceSelf          = "'self'"
	SourceNone          = "'none'"
	SourceUnsafeInline  = "'unsafe-inline'"
	SourceUnsafeEval    = "'unsafe-eval'"
	SourceStrictDynamic = "'strict-dynamic'"
)

// DefaultPolicyName is the name of the policy that exists when none is declared.
const DefaultPolicyName = "default"

// Directives lists every known directive in the order they appear in
// DefaultPolicy.
var Directives = []string{
	ChildSrc, ConnectSrc, DefaultSrc,
	ScriptSrc, ScriptSrcAttr, ScriptSrcElem,
	ObjectSrc,
	StyleSrc, StyleSrcAttr, StyleSrcElem,
	FontSrc, FrameSrc, ImgSrc, ManifestSrc, MediaSrc, PrefetchSrc, WorkerSrc,
	BaseURI, PluginTypes, Sandbox,
	FormAction, FrameAncestors, NavigateTo,
	ReportURI, ReportTo, RequireSRIFor,
	RequireTrustedTypesFor, TrustedTypes,
	UpgradeInsecureRequests, BlockAllMixedContent,
}

// PseudoDirectives lists the build-time pseudo-directives.
var PseudoDirectives = []string{ReportOnly, IncludeNonceIn, ExcludeURLPrefixes}

var flagDirectives = []string{UpgradeInsecureRequests, BlockAllMixedContent}

// IsKnown reports whether directive is a known directive or pseudo-directive.
func IsKnown(directive string) bool {
	return slices.Contains(Directives, directive) || IsPseudo(directive)
}

func IsPseudo(directive string) bool {
	return slices.Contains(PseudoDirectives, directive)
}

// IsFlag reports whether directive takes no value list.
func IsFlag(directive string) bool {
	return slices.Contains(flagDirectives, directive)
}

// NonceSource formats a nonce as a source expression, e.g. 'nonce-R4nd0m'.
func NonceSource(nonce string) string {
	return "'nonce-" + nonce + "'"
}
