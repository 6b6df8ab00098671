package analysis

import "strings"

// stopWords holds per-language words ignored by the frequency count, keyed
// by ISO 639-1 base language.
var stopWords = map[string]map[string]bool{
	"en": set(`
		the a an and or but in on at to for of with by from as is was are were
		been be have has had do does did will would could should may might must
		shall can need it its this that these those i you he she we they me him
		her us them my your his our their what which who whom whose where when
		why how all each every both few more most other some such no not only
		same so than too very just also now here there then if about into
		through during before after above below between under again once any
		because being down further herself himself itself myself ourselves
		themselves yourself yourselves off out over own up while against am
		aren couldn didn doesn don hadn hasn haven isn ll mightn mustn needn
		shan shouldn ve wasn weren won wouldn re`),
	"pl": set(`
		i w z na do o że ze to nie się co jak ale po tak za od już czy gdy go
		je jego jej ich tylko lub przez przy tym oraz ten ta te tej tego tych
		być jest są był była było będzie a jako też więc aby jednak może można
		mi mnie my nas ty ci wy was on ona ono oni one sobie siebie bo gdyż
		ponieważ który która które którzy u bardzo bez dla jeszcze kiedy niech
		pod przed nad między razem wszystko nic kto nigdy zawsze teraz tutaj
		tam wszyscy każdy każda swój swoja swoje twój twoja twoje`),
}

func set(words string) map[string]bool {
	m := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		m[w] = true
	}
	return m
}
