package i18n

// loadEnglishMessages loads all English translations.
func loadEnglishMessages() {
	messages[LangEN] = map[string]string{
		// Guardrail refusal. %s is the blocked topic.
		"answer.refusal": "I'm not able to answer questions about %s. Matters like this require a personalized ruling that depends on your individual circumstances. Please consult a qualified local scholar who can consider your situation directly.",

		// No retrieval hits in either path.
		"answer.no_sources": "I could not find relevant information about this in the available sources. Please try rephrasing your question, or consult a qualified scholar.",

		// Appended to every synthesized answer.
		"answer.reminder": "Please remember: for personalized religious rulings, always consult a qualified scholar.",

		// Hard failure apology (synthesizer unavailable).
		"answer.failure": "I'm sorry, something went wrong while preparing your answer. Please try again shortly.",
	}
}
