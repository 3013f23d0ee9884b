package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpush/internal/domain"
	"marketpush/internal/policy"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockCatalog struct {
	IsItemValidFunc    func(ctx context.Context, itemID string) (bool, error)
	GetItemsFunc       func(ctx context.Context, itemIDs []string) (map[string]domain.Item, error)
	GetUserEventsFunc  func(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error)
	IsHolidayValidFunc func(ctx context.Context, name string, asOf time.Time, locale string) (bool, error)

	eventCalls int
}

func (m *mockCatalog) IsItemValid(ctx context.Context, itemID string) (bool, error) {
	if m.IsItemValidFunc == nil {
		return true, nil
	}
	return m.IsItemValidFunc(ctx, itemID)
}

func (m *mockCatalog) GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error) {
	if m.GetItemsFunc == nil {
		return map[string]domain.Item{}, nil
	}
	return m.GetItemsFunc(ctx, itemIDs)
}

func (m *mockCatalog) GetUserEvents(ctx context.Context, userID string, asOf time.Time, windowDays int) ([]domain.UserEvent, error) {
	m.eventCalls++
	if m.GetUserEventsFunc == nil {
		return nil, nil
	}
	return m.GetUserEventsFunc(ctx, userID, asOf, windowDays)
}

func (m *mockCatalog) IsHolidayValid(ctx context.Context, name string, asOf time.Time, locale string) (bool, error) {
	if m.IsHolidayValidFunc == nil {
		return false, nil
	}
	return m.IsHolidayValidFunc(ctx, name, asOf, locale)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testNow = time.Date(2025, 11, 26, 12, 0, 0, 0, time.UTC)

func newTestService(cat *mockCatalog) *Service {
	if cat == nil {
		cat = &mockCatalog{}
	}
	return NewService(slog.Default(), cat, policy.Default(), clockwork.NewFakeClockAt(testNow))
}

func pushContext() domain.VerifyContext {
	return domain.VerifyContext{
		UserID:      "user_001",
		Market:      "US",
		Now:         testNow,
		Channel:     domain.ChannelPush,
		Locale:      domain.LocaleEnUS,
		Constraints: domain.Constraints{MaxLen: 90, NoURL: true},
	}
}

func codes(vs []domain.Violation) []domain.ViolationCode {
	out := make([]domain.ViolationCode, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Code)
	}
	return out
}

func verifyOne(t *testing.T, svc *Service, c domain.Candidate, vctx domain.VerifyContext) domain.VerifyResult {
	t.Helper()
	res := svc.Verify(context.Background(), []domain.Candidate{c}, vctx)
	require.Len(t, res, 1)
	return res[0]
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func TestVerify_HolidayInsideWindow(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{
		IsHolidayValidFunc: func(_ context.Context, name string, asOf time.Time, locale string) (bool, error) {
			assert.Equal(t, "Black Friday", name)
			assert.Equal(t, domain.LocaleEnUS, locale)
			assert.True(t, asOf.Equal(testNow))
			return true, nil
		},
	}
	svc := newTestService(cat)

	res := verifyOne(t, svc, domain.Candidate{
		Text:   "Check out our Black Friday deals!",
		Claims: domain.Claims{ReferencedHoliday: "Black Friday"},
	}, pushContext())

	assert.NotContains(t, codes(res.Violations), domain.FactHolidayInvalid)
	assert.Equal(t, 1.0, res.Scores.Fact)
	assert.Equal(t, domain.VerdictAllow, res.Verdict)
	assert.Nil(t, res.AutoFix)
}

func TestVerify_HolidayOutsideWindow(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockCatalog{})
	res := verifyOne(t, svc, domain.Candidate{
		Text:   "Check out our Christmas deals today",
		Claims: domain.Claims{ReferencedHoliday: "Christmas"},
	}, pushContext())

	assert.Equal(t, []domain.ViolationCode{domain.FactHolidayInvalid}, codes(res.Violations))
	assert.InDelta(t, 0.8, res.Scores.Fact, 1e-9)
	assert.Equal(t, domain.VerdictAllow, res.Verdict)
}

func TestVerify_URLUnderNoURL(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	res := verifyOne(t, svc, domain.Candidate{
		Text: "Great picks for you at https://example.com today",
	}, pushContext())

	assert.Equal(t, 0.0, res.Scores.Compliance)
	assert.Equal(t, domain.VerdictReject, res.Verdict)
	require.NotNil(t, res.AutoFix)
	assert.True(t, res.AutoFix.RemoveURLs)
	require.NotNil(t, res.AutoFix.Suggested)
	assert.Equal(t, "Great picks for you at today", *res.AutoFix.Suggested)
}

func TestVerify_AnySchemeUnderNoURL(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	res := verifyOne(t, svc, domain.Candidate{
		Text: "Grab your new charger at ftp://deals.example.com now",
	}, pushContext())

	assert.Equal(t, 0.0, res.Scores.Compliance)
	assert.Contains(t, codes(res.Violations), domain.ComplianceURLForbidden)
	assert.Equal(t, domain.VerdictReject, res.Verdict)
}

func TestVerify_RunTogetherSentenceIsNotURL(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	res := verifyOne(t, svc, domain.Candidate{
		Text: "Your cart misses you. Limited time.Shop today for great deals",
	}, pushContext())

	assert.NotContains(t, codes(res.Violations), domain.ComplianceURLForbidden)
	assert.Equal(t, 1.0, res.Scores.Compliance)
	assert.Equal(t, domain.VerdictAllow, res.Verdict)
}

func TestVerify_EmailPartsAreComplianceChecked(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	vctx := pushContext()
	vctx.Channel = domain.ChannelEmail
	vctx.Constraints = domain.Constraints{MaxLen: 500}

	res := verifyOne(t, svc, domain.Candidate{
		Text:    "Your picks are ready. Take a look at what we found for you this week.",
		Body:    "Your picks are ready. Take a look at what we found for you this week.",
		Subject: "No scam, just deals",
		Preview: "The ultimate camera kit",
		Bullets: []string{"Free shipping"},
		CTA:     "Shop Now",
	}, vctx)

	assert.Equal(t, 0.0, res.Scores.Compliance)
	assert.Contains(t, codes(res.Violations), domain.ComplianceForbiddenWords)
	assert.Contains(t, codes(res.Violations), domain.ComplianceAbsoluteWords)
	assert.Equal(t, domain.VerdictReject, res.Verdict)

	// Length and quality still judge the body alone.
	assert.NotContains(t, codes(res.Violations), domain.QualityLenOver)
}

func TestVerify_UnbackedPurchaseClaim(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{
		GetUserEventsFunc: func(_ context.Context, userID string, _ time.Time, windowDays int) ([]domain.UserEvent, error) {
			assert.Equal(t, "user_001", userID)
			assert.Equal(t, EventWindowDays, windowDays)
			return []domain.UserEvent{{UserID: userID, EventType: domain.EventView, ItemID: "v1|itm|001", Timestamp: testNow.Add(-time.Hour)}}, nil
		},
	}
	svc := newTestService(cat)

	res := verifyOne(t, svc, domain.Candidate{
		Text:   "Thanks for your recent order, here are more picks",
		Claims: domain.Claims{ReferencedEvents: []domain.BehaviorTag{domain.TagRecentPurchase}},
	}, pushContext())

	assert.Equal(t, []domain.ViolationCode{domain.FactUserEventMiss}, codes(res.Violations))
	assert.Equal(t, string(domain.TagRecentPurchase), res.Violations[0].Subject)
	assert.InDelta(t, 0.7, res.Scores.Fact, 1e-9)
	assert.Equal(t, domain.VerdictRevise, res.Verdict)
	require.NotNil(t, res.AutoFix)
	assert.Equal(t, []domain.BehaviorTag{domain.TagRecentPurchase}, res.AutoFix.RemoveClaims)
	assert.Nil(t, res.AutoFix.Suggested)
}

func TestVerify_LongEnglishText(t *testing.T) {
	t.Parallel()

	words := make([]string, 50)
	for i := range words {
		words[i] = "deal"
	}
	text := strings.Join(words, " ") + "!"
	require.Equal(t, 250, len(text))

	svc := newTestService(nil)
	vctx := pushContext()
	res := verifyOne(t, svc, domain.Candidate{Text: text}, vctx)

	assert.Contains(t, codes(res.Violations), domain.QualityLenOver)
	require.NotNil(t, res.AutoFix)
	require.NotNil(t, res.AutoFix.TruncateTo)
	assert.Equal(t, 87, *res.AutoFix.TruncateTo)

	require.NotNil(t, res.AutoFix.Suggested)
	assert.LessOrEqual(t, effectiveLength(*res.AutoFix.Suggested, vctx.Locale), vctx.Constraints.MaxLen)
	assert.LessOrEqual(t, utf8.RuneCountInString(*res.AutoFix.Suggested), 87)
	assert.True(t, strings.HasSuffix(*res.AutoFix.Suggested, "..."))
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestVerify_CatalogFailuresDegrade(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	cat := &mockCatalog{
		IsItemValidFunc:    func(context.Context, string) (bool, error) { return false, boom },
		GetItemsFunc:       func(context.Context, []string) (map[string]domain.Item, error) { return nil, boom },
		GetUserEventsFunc:  func(context.Context, string, time.Time, int) ([]domain.UserEvent, error) { return nil, boom },
		IsHolidayValidFunc: func(context.Context, string, time.Time, string) (bool, error) { return false, boom },
	}
	svc := newTestService(cat)

	res := verifyOne(t, svc, domain.Candidate{
		Text: "Your Sony camera is waiting for you",
		Claims: domain.Claims{
			ReferencedItemIDs: []string{"v1|itm|001"},
			ReferencedBrands:  []string{"Sony"},
			ReferencedEvents:  []domain.BehaviorTag{domain.TagRecentView},
			ReferencedHoliday: "Black Friday",
		},
	}, pushContext())

	assert.True(t, res.Audit.Degraded)
	assert.Equal(t, []domain.ViolationCode{
		domain.FactUserEventMiss,
		domain.FactItemInvalid,
		domain.FactBrandMismatch,
		domain.FactHolidayInvalid,
	}, codes(res.Violations))
	assert.Equal(t, 0.0, res.Scores.Fact)
	assert.Equal(t, domain.VerdictReject, res.Verdict)
}

func TestVerify_BrandComparisonIgnoresCase(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{
		GetItemsFunc: func(_ context.Context, ids []string) (map[string]domain.Item, error) {
			return map[string]domain.Item{ids[0]: {ItemID: ids[0], Brand: "Sony", IsActive: true}}, nil
		},
	}
	svc := newTestService(cat)

	res := verifyOne(t, svc, domain.Candidate{
		Text: "New SONY gear picked for you",
		Claims: domain.Claims{
			ReferencedItemIDs: []string{"v1|itm|007"},
			ReferencedBrands:  []string{"SONY", "sony", "Bose"},
		},
	}, pushContext())

	require.Equal(t, []domain.ViolationCode{domain.FactBrandMismatch}, codes(res.Violations))
	assert.Equal(t, "Bose", res.Violations[0].Subject)
	assert.InDelta(t, 0.85, res.Scores.Fact, 1e-9)
}

func TestVerify_UnknownTagsIgnored(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{}
	svc := newTestService(cat)
	res := verifyOne(t, svc, domain.Candidate{
		Text:   "Picked for you this week",
		Claims: domain.Claims{ReferencedEvents: []domain.BehaviorTag{"recent_wishlist"}},
	}, pushContext())

	assert.Empty(t, res.Violations)
	assert.Equal(t, 1.0, res.Scores.Fact)
}

func TestVerify_IsDeterministic(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockCatalog{})
	cands := []domain.Candidate{
		{Text: "Visit www.shop.com for the BEST EVER deals!!!", Claims: domain.Claims{ReferencedItemIDs: []string{"a", "a"}}},
		{Text: "Fresh picks are waiting"},
	}
	vctx := pushContext()

	first := svc.Verify(context.Background(), cands, vctx)
	second := svc.Verify(context.Background(), cands, vctx)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Verify not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, first[0].Audit.CandidateHash, second[0].Audit.CandidateHash)
	assert.NotEqual(t, first[0].Audit.CandidateHash, first[1].Audit.CandidateHash)
	assert.Equal(t, "v1.0.0", first[0].Audit.PolicyVersion)
	assert.Equal(t, "2025-11-26", first[0].Audit.CatalogSnapshotDate)
}

func TestVerify_PreservesOrder(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	cands := []domain.Candidate{{Text: "one two three"}, {Text: ""}, {Text: "a scam"}}
	res := svc.Verify(context.Background(), cands, pushContext())
	require.Len(t, res, 3)
	for i := range cands {
		assert.Equal(t, cands[i].Text, res[i].Candidate.Text)
	}

	assert.NotNil(t, svc.Verify(context.Background(), nil, pushContext()))
}

func TestVerify_DoesNotMutateCandidate(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	c := domain.Candidate{Text: "  hello there friend  ", Claims: domain.Claims{ReferencedItemIDs: []string{" x ", "x"}}}
	res := verifyOne(t, svc, c, pushContext())
	assert.Equal(t, []string{" x ", "x"}, c.Claims.ReferencedItemIDs)
	assert.Equal(t, c, res.Candidate)
}

func TestVerify_HardViolationForcesZero(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	for _, text := range []string{
		"This is not a scam, just great value",
		"Totally fine deals on fake watches",
		"See shop.example.co.uk for details",
	} {
		res := verifyOne(t, svc, domain.Candidate{Text: text}, pushContext())
		assert.Equal(t, 0.0, res.Scores.Compliance, text)
		assert.Equal(t, domain.VerdictReject, res.Verdict, text)
	}
}

func TestVerify_ComplianceMonotonic(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	vctx := pushContext()
	vctx.Constraints.NoPrice = true

	base := "Fresh arrivals picked for you this week"
	steps := []string{
		base,
		base + " guaranteed",
		base + " guaranteed and perfect",
		base + " guaranteed and perfect for $20",
		base + " guaranteed and perfect for $20!!!",
		base + " guaranteed and perfect for $20!!! ???",
	}
	prev := 1.0
	for _, s := range steps {
		got := svc.CheckCompliance(domain.Candidate{Text: s}, vctx).Score
		assert.LessOrEqual(t, got, prev, s)
		prev = got
	}
	assert.InDelta(t, 0.0, prev, 1e-9)
}

func TestCheckCompliance_Penalties(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	tests := []struct {
		name    string
		text    string
		noURL   bool
		noPrice bool
		want    float64
		codes   []domain.ViolationCode
	}{
		{name: "clean", text: "Fresh picks for you", want: 1},
		{name: "url allowed", text: "See https://example.com", want: 1},
		{name: "two absolute words", text: "The ultimate and perfect pick", want: 0.4,
			codes: []domain.ViolationCode{domain.ComplianceAbsoluteWords, domain.ComplianceAbsoluteWords}},
		{name: "cjk absolute", text: "史上最低价", want: 0.4,
			codes: []domain.ViolationCode{domain.ComplianceAbsoluteWords, domain.ComplianceAbsoluteWords}},
		{name: "exclamations", text: "Wow! Yes! Now!", want: 0.9,
			codes: []domain.ViolationCode{domain.ComplianceExcessivePunctuation}},
		{name: "both marks", text: "Wow!!! Really???", want: 0.8,
			codes: []domain.ViolationCode{domain.ComplianceExcessivePunctuation, domain.ComplianceExcessivePunctuation}},
		{name: "price forbidden", text: "Only ¥199 today", noPrice: true, want: 0.8,
			codes: []domain.ViolationCode{domain.CompliancePriceForbidden}},
		{name: "price allowed", text: "Only 199元 today", want: 1},
		{name: "price currency code", text: "Only 20 USD today", noPrice: true, want: 0.8,
			codes: []domain.ViolationCode{domain.CompliancePriceForbidden}},
		{name: "www", text: "go to www.example.org", noURL: true, want: 0,
			codes: []domain.ViolationCode{domain.ComplianceURLForbidden}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vctx := pushContext()
			vctx.Constraints.NoURL = tt.noURL
			vctx.Constraints.NoPrice = tt.noPrice
			got := svc.CheckCompliance(domain.Candidate{Text: tt.text}, vctx)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			if tt.codes == nil {
				assert.Empty(t, got.Violations)
			} else {
				assert.Equal(t, tt.codes, codes(got.Violations))
			}
		})
	}
}

func TestCheckQuality(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	tests := []struct {
		name   string
		text   string
		locale string
		maxLen int
		want   float64
		codes  []domain.ViolationCode
	}{
		{name: "good english", text: "New camera gear picked just for you", locale: domain.LocaleEnUS, maxLen: 90, want: 1},
		{name: "too short", text: "Hi", locale: domain.LocaleEnUS, maxLen: 90, want: 0.8,
			codes: []domain.ViolationCode{domain.QualityLenTooShort}},
		{name: "too long chinese", text: strings.Repeat("好", 95), locale: domain.LocaleZhCN, maxLen: 90, want: 0.7,
			codes: []domain.ViolationCode{domain.QualityLenOver}},
		{name: "emoji heavy", text: "Deals for you 🔥🔥🎁🎁 today", locale: domain.LocaleEnUS, maxLen: 90, want: 0.9,
			codes: []domain.ViolationCode{domain.QualityEmojiExcess}},
		{name: "latin under zh-CN", text: "Great camera deals just for you", locale: domain.LocaleZhCN, maxLen: 90, want: 0.8,
			codes: []domain.ViolationCode{domain.QualityLangMismatch}},
		{name: "mixed zh-CN", text: "为您推荐 Sony 相机新品", locale: domain.LocaleZhCN, maxLen: 90, want: 1},
		{name: "punctuation heavy", text: "a, b, c. d!", locale: domain.LocaleEnUS, maxLen: 90, want: 0.85,
			codes: []domain.ViolationCode{domain.QualityPunctExcess}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vctx := pushContext()
			vctx.Locale = tt.locale
			vctx.Constraints.MaxLen = tt.maxLen
			got := svc.CheckQuality(domain.Candidate{Text: tt.text}, vctx)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			require.NotNil(t, got.Metrics)
			if tt.codes == nil {
				assert.Empty(t, got.Violations)
			} else {
				assert.Equal(t, tt.codes, codes(got.Violations))
			}
		})
	}
}

func TestCheckQuality_Metrics(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	got := svc.CheckQuality(domain.Candidate{Text: "BIG SALE NOW 🔥"}, pushContext())
	require.NotNil(t, got.Metrics)
	assert.Equal(t, 20, got.Metrics.EffectiveLength)
	assert.Equal(t, 1, got.Metrics.EmojiCount)
	assert.InDelta(t, 0.7, got.Metrics.Readability, 1e-9)
	assert.Equal(t, 0.0, got.Metrics.PunctuationRatio)
}

func TestCheckFacts_SkipsEventLookupWithoutTags(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{}
	svc := newTestService(cat)
	res, degraded := svc.CheckFacts(context.Background(), domain.Candidate{Text: "hello"}, pushContext())
	assert.False(t, degraded)
	assert.Equal(t, 1.0, res.Score)
	assert.Zero(t, cat.eventCalls)
}

// ---------------------------------------------------------------------------
// Verdict and auto-fix
// ---------------------------------------------------------------------------

func TestDecide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fact, compliance, quality float64
		want                      domain.Verdict
	}{
		{1, 0, 1, domain.VerdictReject},
		{0, 0.7, 0, domain.VerdictRevise},
		{0.5, 0.8, 1, domain.VerdictReject},
		{0.7, 1, 0, domain.VerdictRevise},
		{0.8, 1, 0.4, domain.VerdictReject},
		{0.8, 1, 0.6, domain.VerdictRevise},
		{0.8, 0.8, 0.7, domain.VerdictAllow},
		{1, 1, 1, domain.VerdictAllow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Decide(tt.fact, tt.compliance, tt.quality), "%v/%v/%v", tt.fact, tt.compliance, tt.quality)
	}
}

func TestSuggestFix_ChineseWithURL(t *testing.T) {
	t.Parallel()

	svc := newTestService(nil)
	vctx := pushContext()
	vctx.Locale = domain.LocaleZhCN
	vctx.Constraints.MaxLen = 20
	text := "限时好物推荐给您 https://shop.example.com/deal " + strings.Repeat("精选", 15)

	res := verifyOne(t, svc, domain.Candidate{Text: text}, vctx)
	require.NotNil(t, res.AutoFix)
	assert.True(t, res.AutoFix.RemoveURLs)
	require.NotNil(t, res.AutoFix.TruncateTo)
	assert.Equal(t, 17, *res.AutoFix.TruncateTo)
	require.NotNil(t, res.AutoFix.Suggested)
	assert.False(t, ContainsURL(*res.AutoFix.Suggested))
	assert.LessOrEqual(t, effectiveLength(*res.AutoFix.Suggested, vctx.Locale), vctx.Constraints.MaxLen)
}

func TestSuggestFix_NothingToSuggest(t *testing.T) {
	t.Parallel()

	vctx := pushContext()
	fix := SuggestFix(domain.Candidate{Text: "ok"}, vctx,
		domain.ScoreResult{Score: 1},
		domain.ScoreResult{Score: 1},
		domain.ScoreResult{Score: 0.8, Violations: []domain.Violation{{Code: domain.QualityLenTooShort}}},
	)
	assert.Nil(t, fix)
}

func TestSuggestFix_RemoveClaimsCanonicalOrder(t *testing.T) {
	t.Parallel()

	fact := domain.ScoreResult{Violations: []domain.Violation{
		{Code: domain.FactUserEventMiss, Subject: string(domain.TagRecentPurchase)},
		{Code: domain.FactItemInvalid, Subject: "x"},
		{Code: domain.FactUserEventMiss, Subject: string(domain.TagRecentView)},
		{Code: domain.FactUserEventMiss, Subject: string(domain.TagRecentPurchase)},
	}}
	fix := SuggestFix(domain.Candidate{Text: "fine text here"}, pushContext(), fact, domain.ScoreResult{Score: 1}, domain.ScoreResult{Score: 1})
	require.NotNil(t, fix)
	assert.Equal(t, []domain.BehaviorTag{domain.TagRecentView, domain.TagRecentPurchase}, fix.RemoveClaims)
}

func TestCheckFacts_InvalidItemsNeverRaiseScore(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{
		IsItemValidFunc: func(_ context.Context, id string) (bool, error) { return id == "v1|itm|001", nil },
	}
	svc := newTestService(cat)

	ids := []string{"v1|itm|001"}
	prev, _ := svc.CheckFacts(context.Background(), domain.Candidate{Claims: domain.Claims{ReferencedItemIDs: ids}}, pushContext())
	for _, bad := range []string{"v1|itm|999", "nope", "v1|itm|404"} {
		ids = append(ids, bad)
		got, _ := svc.CheckFacts(context.Background(), domain.Candidate{Claims: domain.Claims{ReferencedItemIDs: ids}}, pushContext())
		assert.LessOrEqual(t, got.Score, prev.Score)
		prev = got
	}
	assert.Equal(t, 0.0, prev.Score)
}
