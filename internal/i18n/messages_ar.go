package i18n

// loadArabicMessages loads all Arabic translations.
func loadArabicMessages() {
	messages[LangAR] = map[string]string{
		// Guardrail refusal. %s is the blocked topic.
		"answer.refusal": "لا أستطيع الإجابة عن الأسئلة المتعلقة بـ %s. مثل هذه المسائل تتطلب فتوى شخصية تعتمد على ظروفك الخاصة. يرجى استشارة عالم مؤهل في منطقتك.",

		// No retrieval hits in either path.
		"answer.no_sources": "لم أجد معلومات ذات صلة بسؤالك في المصادر المتاحة. حاول إعادة صياغة السؤال، أو استشر عالماً مؤهلاً.",

		// Appended to every synthesized answer.
		"answer.reminder": "تذكير: للفتاوى الشخصية، يرجى دائماً استشارة عالم مؤهل.",

		// Hard failure apology (synthesizer unavailable).
		"answer.failure": "عذراً، حدث خطأ أثناء تجهيز الإجابة. يرجى المحاولة مرة أخرى بعد قليل.",
	}
}
