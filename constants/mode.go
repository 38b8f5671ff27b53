package constants

// Extraction modes.
const (
	ModePattern = "pattern"
	ModeLLM     = "llm"
)

var Modes = []string{ModePattern, ModeLLM}

// PDF text backends.
const (
	BackendNative    = "native"
	BackendPDFToText = "pdftotext"
	BackendFitz      = "fitz"
)

var PDFBackends = []string{BackendNative, BackendPDFToText, BackendFitz}

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var Providers = []string{ProviderOpenAI, ProviderGemini}

// Response formats of the extract endpoint.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)
