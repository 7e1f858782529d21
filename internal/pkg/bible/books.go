package bible

// Book is one book of the canon with its Portuguese display name and
// chapter count.
type Book struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Chapters int    `json:"chapters"`
}

// Books is the 66-book canon in canonical order.
var Books = []Book{
	{ID: "genesis", Name: "Gênesis", Chapters: 50},
	{ID: "exodus", Name: "Êxodo", Chapters: 40},
	{ID: "leviticus", Name: "Levítico", Chapters: 27},
	{ID: "numbers", Name: "Números", Chapters: 36},
	{ID: "deuteronomy", Name: "Deuteronômio", Chapters: 34},
	{ID: "joshua", Name: "Josué", Chapters: 24},
	{ID: "judges", Name: "Juízes", Chapters: 21},
	{ID: "ruth", Name: "Rute", Chapters: 4},
	{ID: "1samuel", Name: "1 Samuel", Chapters: 31},
	{ID: "2samuel", Name: "2 Samuel", Chapters: 24},
	{ID: "1kings", Name: "1 Reis", Chapters: 22},
	{ID: "2kings", Name: "2 Reis", Chapters: 25},
	{ID: "1chronicles", Name: "1 Crônicas", Chapters: 29},
	{ID: "2chronicles", Name: "2 Crônicas", Chapters: 36},
	{ID: "ezra", Name: "Esdras", Chapters: 10},
	{ID: "nehemiah", Name: "Neemias", Chapters: 13},
	{ID: "esther", Name: "Ester", Chapters: 10},
	{ID: "job", Name: "Jó", Chapters: 42},
	{ID: "psalms", Name: "Salmos", Chapters: 150},
	{ID: "proverbs", Name: "Provérbios", Chapters: 31},
	{ID: "ecclesiastes", Name: "Eclesiastes", Chapters: 12},
	{ID: "songofsolomon", Name: "Cânticos", Chapters: 8},
	{ID: "isaiah", Name: "Isaías", Chapters: 66},
	{ID: "jeremiah", Name: "Jeremias", Chapters: 52},
	{ID: "lamentations", Name: "Lamentações", Chapters: 5},
	{ID: "ezekiel", Name: "Ezequiel", Chapters: 48},
	{ID: "daniel", Name: "Daniel", Chapters: 12},
	{ID: "hosea", Name: "Oséias", Chapters: 14},
	{ID: "joel", Name: "Joel", Chapters: 3},
	{ID: "amos", Name: "Amós", Chapters: 9},
	{ID: "obadiah", Name: "Obadias", Chapters: 1},
	{ID: "jonah", Name: "Jonas", Chapters: 4},
	{ID: "micah", Name: "Miquéias", Chapters: 7},
	{ID: "nahum", Name: "Naum", Chapters: 3},
	{ID: "habakkuk", Name: "Habacuque", Chapters: 3},
	{ID: "zephaniah", Name: "Sofonias", Chapters: 3},
	{ID: "haggai", Name: "Ageu", Chapters: 2},
	{ID: "zechariah", Name: "Zacarias", Chapters: 14},
	{ID: "malachi", Name: "Malaquias", Chapters: 4},
	{ID: "matthew", Name: "Mateus", Chapters: 28},
	{ID: "mark", Name: "Marcos", Chapters: 16},
	{ID: "luke", Name: "Lucas", Chapters: 24},
	{ID: "john", Name: "João", Chapters: 21},
	{ID: "acts", Name: "Atos", Chapters: 28},
	{ID: "romans", Name: "Romanos", Chapters: 16},
	{ID: "1corinthians", Name: "1 Coríntios", Chapters: 16},
	{ID: "2corinthians", Name: "2 Coríntios", Chapters: 13},
	{ID: "galatians", Name: "Gálatas", Chapters: 6},
	{ID: "ephesians", Name: "Efésios", Chapters: 6},
	{ID: "philippians", Name: "Filipenses", Chapters: 4},
	{ID: "colossians", Name: "Colossenses", Chapters: 4},
	{ID: "1thessalonians", Name: "1 Tessalonicenses", Chapters: 5},
	{ID: "2thessalonians", Name: "2 Tessalonicenses", Chapters: 3},
	{ID: "1timothy", Name: "1 Timóteo", Chapters: 6},
	{ID: "2timothy", Name: "2 Timóteo", Chapters: 4},
	{ID: "titus", Name: "Tito", Chapters: 3},
	{ID: "philemon", Name: "Filemom", Chapters: 1},
	{ID: "hebrews", Name: "Hebreus", Chapters: 13},
	{ID: "james", Name: "Tiago", Chapters: 5},
	{ID: "1peter", Name: "1 Pedro", Chapters: 5},
	{ID: "2peter", Name: "2 Pedro", Chapters: 3},
	{ID: "1john", Name: "1 João", Chapters: 5},
	{ID: "2john", Name: "2 João", Chapters: 1},
	{ID: "3john", Name: "3 João", Chapters: 1},
	{ID: "jude", Name: "Judas", Chapters: 1},
	{ID: "revelation", Name: "Apocalipse", Chapters: 22},
}

// FindBook looks up a book by its id.
func FindBook(id string) (Book, bool) {
	for _, b := range Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}
