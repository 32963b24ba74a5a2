package models

// Locale selects the fixed user-facing strings.
type Locale string

const (
	LocaleBengali Locale = "bn"
	LocaleEnglish Locale = "en"
)

// Messages holds the fixed strings shown by every surface.
type Messages struct {
	Apology          string
	CopyLabel        string
	CopiedLabel      string
	CatalogError     string
	LoadingModels    string
	InputPlaceholder string
}

var bengaliMessages = Messages{
	Apology:          "দুঃখিত, কোনো ত্রুটি হয়েছে।",
	CopyLabel:        "কপি",
	CopiedLabel:      "কপি হয়েছে!",
	CatalogError:     "Error loading models",
	LoadingModels:    "Loading models...",
	InputPlaceholder: "আপনার প্রশ্ন লিখুন...",
}

var englishMessages = Messages{
	Apology:          "Sorry, something went wrong.",
	CopyLabel:        "Copy",
	CopiedLabel:      "Copied!",
	CatalogError:     "Error loading models",
	LoadingModels:    "Loading models...",
	InputPlaceholder: "Type your message...",
}

// MessagesFor returns the strings for locale, falling back to Bengali.
func MessagesFor(locale Locale) Messages {
	if locale == LocaleEnglish {
		return englishMessages
	}
	return bengaliMessages
}
