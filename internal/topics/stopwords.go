package topics

// defaultStopwords covers English and Dutch filler plus words that appear in
// nearly every check-in and carry no theme.
var defaultStopwords = []string{
	// English
	"about", "after", "again", "also", "because", "been", "before", "being",
	"but", "could", "didn", "does", "doesn", "doing", "from", "have", "having",
	"into", "just", "like", "more", "most", "much", "only", "other", "over",
	"really", "some", "than", "that", "their", "them", "then", "there", "these",
	"they", "this", "those", "very", "were", "what", "when", "where", "which",
	"while", "with", "would", "your", "today", "feel", "feels", "feeling",
	"player", "athlete", "says", "said", "mentions", "mentioned", "reports",
	"reported", "bit", "little", "quite", "good", "well",
	// Dutch
	"aan", "alle", "alles", "als", "andere", "beetje", "bij", "daar", "dan",
	"dat", "deze", "die", "dit", "door", "echt", "een", "geen", "goed", "had",
	"heb", "heeft", "hem", "het", "hier", "hij", "hoe", "haar", "ik", "met",
	"maar", "meer", "mijn", "naar", "niet", "niets", "nog", "omdat", "ook",
	"over", "veel", "voor", "vandaag", "waren", "was", "wat", "werd", "wordt",
	"zich", "zijn", "zoals", "speler", "voelt", "vertelt", "zegt",
}
