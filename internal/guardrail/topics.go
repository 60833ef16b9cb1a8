package guardrail

// defaultTopics is the process-wide block-topic list: subjects that
// require a personalized ruling from a qualified scholar and must not be
// answered from retrieved passages alone.
//
// Entries are lowercase substrings matched against the normalized
// question. Loaded once at process start; never mutated.
var defaultTopics = []string{
	// Personalized rulings
	"fatwa for me",
	"personal fatwa",
	"istikhara ruling",
	"ruling on my",

	// Marital dissolution — outcomes depend on individual circumstances
	"divorce ruling",
	"talaq ruling",
	"khula ruling",
	"is my marriage valid",
	"is my divorce valid",

	// Estate division requires a scholar and local law
	"inheritance division",
	"divide the inheritance",
	"my inheritance share",

	// Oath/vow expiation depends on the person's situation
	"kaffara for my",
	"expiation for my",

	// Arabic equivalents
	"فتوى شخصية",
	"حكم الاستخارة",
	"حكم طلاقي",
	"قسمة الميراث",
	"نصيبي من الميراث",
}
