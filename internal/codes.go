package internal

// Validator codes. Every code is owned by exactly one validator, except
// CodeDocumentSchema which is emitted by the document loader.
const (
	CodeInvalidIdentifier   = "DMS-SYNTAX-001"
	CodeDuplicateDefinition = "DMS-SYNTAX-002"
	CodeDocumentSchema      = "DMS-SYNTAX-003"
	CodeMalformedProperty   = "DMS-SYNTAX-004"

	CodeValueTypeUndefined = "DMS-CONNECTIONS-001"
	CodeValueTypeUnset     = "DMS-CONNECTIONS-002"

	CodeReverseSourceMissing      = "DMS-CONNECTIONS-REVERSE-001"
	CodeReverseThroughMissing     = "DMS-CONNECTIONS-REVERSE-002"
	CodeReverseThroughNotDirect   = "DMS-CONNECTIONS-REVERSE-003"
	CodeReverseContainerNotDirect = "DMS-CONNECTIONS-REVERSE-004"
	CodeReverseTargetsAncestor    = "DMS-CONNECTIONS-REVERSE-005"
	CodeReverseTargetMismatch     = "DMS-CONNECTIONS-REVERSE-006"
	CodeReverseTargetUnset        = "DMS-CONNECTIONS-REVERSE-007"

	CodeContainerMissing         = "DMS-CONTAINER-001"
	CodeContainerPropertyMissing = "DMS-CONTAINER-002"
	CodeDirectTypeMismatch       = "DMS-CONTAINER-003"
	CodeRequiresCycle            = "DMS-CONTAINER-004"
	CodeRequiresMissing          = "DMS-CONTAINER-005"
	CodeIndexPropertyMissing     = "DMS-CONTAINER-006"

	CodeImplementsMissing = "DMS-VIEW-001"
	CodeViewEmpty         = "DMS-VIEW-002"
	CodeImplementsCycle   = "DMS-VIEW-003"
	CodeDataModelViewGone = "DMS-VIEW-004"

	CodeViewSpaceMismatch   = "DMS-CONSISTENCY-001"
	CodeViewVersionMismatch = "DMS-CONSISTENCY-002"

	CodeLimitDataModelViews   = "DMS-LIMITS-DATAMODEL-001"
	CodeLimitViewProperties   = "DMS-LIMITS-VIEW-001"
	CodeLimitViewImplements   = "DMS-LIMITS-VIEW-002"
	CodeLimitViewContainers   = "DMS-LIMITS-VIEW-003"
	CodeLimitContainerProps   = "DMS-LIMITS-CONTAINER-001"
	CodeLimitListSize         = "DMS-LIMITS-CONTAINER-002"
	CodeLimitEnumValues       = "DMS-LIMITS-CONTAINER-003"
	CodeLimitContainerIndexes = "DMS-LIMITS-CONTAINER-004"

	CodeMissingRequiresHierarchy = "DMS-PERFORMANCE-001"

	CodeDataModelName         = "DMS-AI-READINESS-001"
	CodeDataModelDescription  = "DMS-AI-READINESS-002"
	CodeViewName              = "DMS-AI-READINESS-003"
	CodeViewDescription       = "DMS-AI-READINESS-004"
	CodeEnumValueUndocumented = "DMS-AI-READINESS-005"
)
