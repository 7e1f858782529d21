package bible

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// genesisOneACF is the bundled chapter shipped with the binary so the
// no-network path still renders real scripture.
var genesisOneACF = Chapter{
	Reference:       "Gênesis 1",
	BookID:          "genesis",
	BookName:        "Gênesis",
	Chapter:         1,
	TranslationID:   "acf",
	TranslationName: "Almeida Corrigida Fiel",
	Verses: []Verse{
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 1, Text: "No princípio, criou Deus os céus e a terra."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 2, Text: "A terra, porém, estava sem forma e vazia; havia trevas sobre a face do abismo, e o Espírito de Deus pairava sobre as águas."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 3, Text: "Disse Deus: Haja luz. E houve luz."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 4, Text: "Viu Deus que a luz era boa e fez separação entre a luz e as trevas."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 5, Text: "E chamou Deus à luz Dia e às trevas, Noite. Houve tarde e manhã, o primeiro dia."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 6, Text: "E disse Deus: Haja um firmamento no meio das águas e separação entre águas e águas."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 7, Text: "Fez, pois, Deus o firmamento e separação entre as águas debaixo do firmamento e as águas sobre o firmamento. E assim se fez."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 8, Text: "E chamou Deus ao firmamento Céus. Houve tarde e manhã, o segundo dia."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 9, Text: "Disse também Deus: Ajuntem-se as águas debaixo dos céus num só lugar, e apareça a porção seca. E assim se fez."},
		{BookID: "genesis", BookName: "Gênesis", Chapter: 1, Verse: 10, Text: "À porção seca chamou Deus Terra e ao ajuntamento das águas, Mares. E viu Deus que isso era bom."},
	},
}

// SampleChapter resolves a loader key to bundled content. Genesis 1 (ACF) is
// shipped verbatim; any other valid reference gets a placeholder chapter so
// the response shape stays intact even fully offline.
func SampleChapter(key string) (string, bool) {
	bookID, chapter, translationID, ok := parseChapterKey(key)
	if !ok {
		return "", false
	}
	if bookID == "genesis" && chapter == 1 && translationID == "acf" {
		payload, err := json.Marshal(genesisOneACF)
		if err != nil {
			return "", false
		}
		return string(payload), true
	}

	book, ok := FindBook(bookID)
	if !ok {
		return "", false
	}
	translation, ok := FindTranslation(translationID)
	if !ok {
		return "", false
	}

	placeholder := Chapter{
		Reference:       fmt.Sprintf("%s %d", book.Name, chapter),
		BookID:          book.ID,
		BookName:        book.Name,
		Chapter:         chapter,
		TranslationID:   translation.ID,
		TranslationName: translation.Name,
	}
	for v := 1; v <= 10; v++ {
		placeholder.Verses = append(placeholder.Verses, Verse{
			BookID:   book.ID,
			BookName: book.Name,
			Chapter:  chapter,
			Verse:    v,
			Text:     fmt.Sprintf("Verso %d indisponível no modo offline para %s %d.", v, book.Name, chapter),
		})
	}

	payload, err := json.Marshal(placeholder)
	if err != nil {
		return "", false
	}
	return string(payload), true
}

func chapterKey(bookID string, chapter int, translationID string) string {
	return bookID + "/" + strconv.Itoa(chapter) + "/" + translationID
}

func parseChapterKey(key string) (bookID string, chapter int, translationID string, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", 0, "", false
	}
	chapter, err := strconv.Atoi(parts[1])
	if err != nil || chapter < 1 {
		return "", 0, "", false
	}
	return parts[0], chapter, parts[2], true
}
