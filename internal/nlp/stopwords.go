package nlp

// englishStopWords is the stop list applied before keyword extraction.
var englishStopWords = wordSet(
	"a", "about", "above", "across", "after", "afterwards", "again", "against", "all",
	"almost", "alone", "along", "already", "also", "although", "always", "am", "among",
	"amongst", "an", "and", "another", "any", "anyhow", "anyone", "anything", "anyway",
	"anywhere", "are", "around", "as", "at", "back", "be", "became", "because", "become",
	"becomes", "becoming", "been", "before", "beforehand", "behind", "being", "below",
	"beside", "besides", "between", "beyond", "both", "but", "by", "can", "cannot",
	"could", "did", "do", "does", "done", "down", "due", "during", "each", "eg", "eight",
	"either", "else", "elsewhere", "enough", "etc", "even", "ever", "every", "everyone",
	"everything", "everywhere", "except", "few", "first", "five", "for", "former",
	"formerly", "four", "from", "further", "get", "give", "go", "had", "has", "have",
	"he", "hence", "her", "here", "hereafter", "hereby", "herein", "hers", "herself",
	"him", "himself", "his", "how", "however", "i", "ie", "if", "in", "indeed", "into",
	"is", "it", "its", "itself", "just", "keep", "last", "latter", "least", "less",
	"made", "many", "may", "me", "meanwhile", "might", "mine", "more", "moreover",
	"most", "mostly", "much", "must", "my", "myself", "namely", "neither", "never",
	"nevertheless", "next", "nine", "no", "nobody", "none", "nor", "not", "nothing",
	"now", "nowhere", "of", "off", "often", "on", "once", "one", "only", "onto", "or",
	"other", "others", "otherwise", "our", "ours", "ourselves", "out", "over", "own",
	"part", "per", "perhaps", "please", "put", "rather", "re", "same", "see", "seem",
	"seemed", "seeming", "seems", "several", "she", "should", "since", "six", "so",
	"some", "somehow", "someone", "something", "sometime", "sometimes", "somewhere",
	"still", "such", "take", "ten", "than", "that", "the", "their", "them", "themselves",
	"then", "thence", "there", "thereafter", "thereby", "therefore", "therein", "these",
	"they", "third", "this", "those", "though", "three", "through", "throughout", "thru",
	"thus", "to", "together", "too", "toward", "towards", "twelve", "twenty", "two",
	"un", "under", "until", "up", "upon", "us", "very", "via", "was", "we", "well",
	"were", "what", "whatever", "when", "whence", "whenever", "where", "whereafter",
	"whereas", "whereby", "wherein", "whereupon", "wherever", "whether", "which",
	"while", "who", "whoever", "whole", "whom", "whose", "why", "will", "with",
	"within", "without", "would", "yet", "you", "your", "yours", "yourself", "yourselves",
)

func wordSet(ws ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ws))
	for _, w := range ws {
		m[w] = struct{}{}
	}
	return m
}
