package bible

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verbumapp/verbum/internal/pkg/contentsource"
	"github.com/verbumapp/verbum/internal/pkg/entitlements"
)

type recordingRemote struct {
	keys []string
	data map[string]string
}

func (r *recordingRemote) Fetch(ctx context.Context, key string) (string, error) {
	r.keys = append(r.keys, key)
	if value, ok := r.data[key]; ok {
		return value, nil
	}
	return "", errors.New("not found upstream")
}

func activeEntitlement(tier entitlements.Tier) entitlements.Entitlement {
	expires := time.Now().Add(24 * time.Hour)
	return entitlements.Entitlement{Tier: tier, Active: true, ExpiresAt: &expires}
}

func sampleOnlyService() *Service {
	return NewService(contentsource.NewLoader(contentsource.Config{
		Name:   "bible",
		Sample: SampleChapter,
	}))
}

func TestGetChapterServesBundledGenesisOffline(t *testing.T) {
	svc := sampleOnlyService()

	result, err := svc.GetChapter(context.Background(), entitlements.Free(), false, "genesis", 1, "acf")
	require.NoError(t, err)

	assert.Equal(t, contentsource.OriginSample, result.Origin)
	assert.Nil(t, result.Denial)
	assert.Equal(t, "Gênesis 1", result.Chapter.Reference)
	assert.Equal(t, "acf", result.Chapter.TranslationID)
	require.NotEmpty(t, result.Chapter.Verses)
	assert.Equal(t, "No princípio, criou Deus os céus e a terra.", result.Chapter.Verses[0].Text)
}

func TestGetChapterPlaceholderKeepsShape(t *testing.T) {
	svc := sampleOnlyService()

	result, err := svc.GetChapter(context.Background(), entitlements.Free(), false, "psalms", 23, "")
	require.NoError(t, err)

	assert.Equal(t, "Salmos 23", result.Chapter.Reference)
	assert.Equal(t, "acf", result.Chapter.TranslationID)
	assert.Len(t, result.Chapter.Verses, 10)
	assert.Equal(t, 23, result.Chapter.Verses[0].Chapter)
}

func TestGetChapterGatesPaidTranslationForAnonymous(t *testing.T) {
	remote := &recordingRemote{data: map[string]string{}}
	svc := NewService(contentsource.NewLoader(contentsource.Config{
		Name:   "bible",
		Remote: remote,
		Sample: SampleChapter,
	}))

	result, err := svc.GetChapter(context.Background(), entitlements.Free(), false, "genesis", 1, "kjv")
	require.NoError(t, err)

	require.NotNil(t, result.Denial)
	assert.Equal(t, "kjv", result.Denial.RequestedTranslation)
	assert.Equal(t, entitlements.TierBasic, result.Denial.RequiredTier)
	assert.Equal(t, "acf", result.Chapter.TranslationID)

	// Only the free variant was ever requested from any layer.
	require.NotEmpty(t, remote.keys)
	for _, key := range remote.keys {
		assert.Equal(t, "genesis/1/acf", key)
	}
}

func TestGetChapterGatesPremiumForBasicSubscriber(t *testing.T) {
	svc := sampleOnlyService()

	result, err := svc.GetChapter(context.Background(), activeEntitlement(entitlements.TierBasic), true, "john", 3, "rvr")
	require.NoError(t, err)

	require.NotNil(t, result.Denial)
	assert.Equal(t, "rvr", result.Denial.RequestedTranslation)
	assert.Equal(t, entitlements.TierPremium, result.Denial.RequiredTier)
	assert.Equal(t, "acf", result.Chapter.TranslationID)
}

func TestGetChapterServesPaidTranslationToSubscriber(t *testing.T) {
	remote := &recordingRemote{data: map[string]string{
		"john/3/kjv": `{"reference":"João 3","verses":[{"book_id":"john","book_name":"João","chapter":3,"verse":16,"text":"Porque Deus amou o mundo..."}],"translation_id":"kjv","translation_name":"King James (Português)","book_id":"john","book_name":"João","chapter":3}`,
	}}
	svc := NewService(contentsource.NewLoader(contentsource.Config{Name: "bible", Remote: remote}))

	result, err := svc.GetChapter(context.Background(), activeEntitlement(entitlements.TierBasic), true, "john", 3, "kjv")
	require.NoError(t, err)

	assert.Nil(t, result.Denial)
	assert.Equal(t, contentsource.OriginRemote, result.Origin)
	assert.Equal(t, "kjv", result.Chapter.TranslationID)
	assert.Equal(t, []string{"john/3/kjv"}, remote.keys)
}

func TestGetChapterValidatesInput(t *testing.T) {
	svc := sampleOnlyService()
	ctx := context.Background()

	_, err := svc.GetChapter(ctx, entitlements.Free(), false, "gospel-of-thomas", 1, "acf")
	assert.ErrorIs(t, err, ErrUnknownBook)

	_, err = svc.GetChapter(ctx, entitlements.Free(), false, "jude", 2, "acf")
	assert.ErrorIs(t, err, ErrInvalidChapter)

	_, err = svc.GetChapter(ctx, entitlements.Free(), false, "genesis", 0, "acf")
	assert.ErrorIs(t, err, ErrInvalidChapter)

	_, err = svc.GetChapter(ctx, entitlements.Free(), false, "genesis", 1, "vulgate")
	assert.ErrorIs(t, err, ErrUnknownTranslation)
}

func TestCanonShape(t *testing.T) {
	assert.Len(t, Books, 66)

	seen := make(map[string]bool)
	for _, b := range Books {
		assert.False(t, seen[b.ID], "duplicate book id %s", b.ID)
		seen[b.ID] = true
		assert.Positive(t, b.Chapters)
	}

	psalms, ok := FindBook("psalms")
	require.True(t, ok)
	assert.Equal(t, 150, psalms.Chapters)

	free := 0
	for _, tr := range Translations {
		if tr.RequiredTier == entitlements.TierFree {
			free++
		}
	}
	assert.Equal(t, 1, free, "exactly one free translation")
}
