package request

import "net/url"

// MatchAttrPrefix namespaces attributes recorded by handler mappings so
// they cannot collide with attributes introduced by other layers.
const MatchAttrPrefix = "dispatchkit.mapping."

// Match-metadata attribute names. Every one of them is optional: a
// mapping records only the subset it supports, and consumers must
// tolerate absence.
const (
	// AttrBestMatchingHandler holds the handler mapped for the best
	// matching pattern.
	AttrBestMatchingHandler = MatchAttrPrefix + "bestMatchingHandler"

	// AttrLookupPath holds the path that was used to look up the handler.
	AttrLookupPath = MatchAttrPrefix + "lookupPath"

	// AttrPathWithinMapping holds the path within the matched mapping in
	// case of a pattern match, or the full relevant path otherwise.
	AttrPathWithinMapping = MatchAttrPrefix + "pathWithinMapping"

	// AttrBestMatchingPattern holds the best matching pattern within the
	// mapping.
	AttrBestMatchingPattern = MatchAttrPrefix + "bestMatchingPattern"

	// AttrIntrospectTypeLevelMapping flags that type-level mappings
	// should be inspected.
	AttrIntrospectTypeLevelMapping = MatchAttrPrefix + "introspectTypeLevelMapping"

	// AttrURITemplateVariables holds the URI template variable bindings,
	// mapping variable names to values.
	AttrURITemplateVariables = MatchAttrPrefix + "uriTemplateVariables"

	// AttrMatrixVariables holds matrix variable bindings, mapping each
	// path variable name to the multi-valued parameters of its segment.
	AttrMatrixVariables = MatchAttrPrefix + "matrixVariables"

	// AttrProducibleMediaTypes holds the set of media types the mapped
	// handler can produce.
	AttrProducibleMediaTypes = MatchAttrPrefix + "producibleMediaTypes"
)

// LookupPath returns the lookup path recorded during matching.
func (c *Context) LookupPath() (string, bool) {
	v, ok := c.attrs[AttrLookupPath].(string)
	return v, ok
}

// BestMatchingPattern returns the pattern the request matched.
func (c *Context) BestMatchingPattern() (string, bool) {
	v, ok := c.attrs[AttrBestMatchingPattern].(string)
	return v, ok
}

// BestMatchingHandler returns the handler recorded for the best match.
func (c *Context) BestMatchingHandler() (any, bool) {
	v, ok := c.attrs[AttrBestMatchingHandler]
	return v, ok
}

// PathWithinMapping returns the path within the matched mapping.
func (c *Context) PathWithinMapping() (string, bool) {
	v, ok := c.attrs[AttrPathWithinMapping].(string)
	return v, ok
}

// PathVariables returns the URI template variable bindings, or nil when
// the matched route had no template variables.
func (c *Context) PathVariables() map[string]string {
	v, _ := c.attrs[AttrURITemplateVariables].(map[string]string)
	return v
}

// MatrixVariables returns matrix variable bindings grouped per path
// variable, or nil when none were extracted.
func (c *Context) MatrixVariables() map[string]url.Values {
	v, _ := c.attrs[AttrMatrixVariables].(map[string]url.Values)
	return v
}

// ProducibleMediaTypes returns the media types the matched handler can
// produce, or nil when the mapping did not declare any.
func (c *Context) ProducibleMediaTypes() []string {
	v, _ := c.attrs[AttrProducibleMediaTypes].([]string)
	return v
}

// IntrospectTypeLevelMapping reports whether the matched route requested
// type-level introspection.
func (c *Context) IntrospectTypeLevelMapping() bool {
	v, _ := c.attrs[AttrIntrospectTypeLevelMapping].(bool)
	return v
}
