package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stayhaven/viewer-service/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeIdentity struct {
	authURL string

	exchangeFn  func(code string) (domain.ExternalIdentity, error)
	exchangeErr error
	ident       domain.ExternalIdentity

	codes []string
}

func (f *fakeIdentity) AuthURL() string { return f.authURL }

func (f *fakeIdentity) Exchange(ctx context.Context, code string) (domain.ExternalIdentity, error) {
	f.codes = append(f.codes, code)
	if f.exchangeFn != nil {
		return f.exchangeFn(code)
	}
	if f.exchangeErr != nil {
		return domain.ExternalIdentity{}, f.exchangeErr
	}
	return f.ident, nil
}

type fakeStore struct {
	mu sync.Mutex

	byID map[string]domain.Viewer

	// injected errors (if set, method returns error)
	findAndUpdateErr error
	insertErr        error
	findErr          error

	// record calls
	patches []struct {
		id    string
		patch Patch
	}
	inserted []domain.Viewer
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]domain.Viewer{}}
}

func (f *fakeStore) FindAndUpdate(ctx context.Context, id string, p Patch) (domain.Viewer, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findAndUpdateErr != nil {
		return domain.Viewer{}, false, f.findAndUpdateErr
	}
	f.patches = append(f.patches, struct {
		id    string
		patch Patch
	}{id, p})

	v, ok := f.byID[id]
	if !ok {
		return domain.Viewer{}, false, nil
	}
	v.Token = p.Token
	if p.Identity != nil {
		v.Name = p.Identity.DisplayName
		v.Email = p.Identity.Email
		v.Avatar = p.Identity.AvatarURL
	}
	f.byID[id] = v
	return v, true, nil
}

func (f *fakeStore) Insert(ctx context.Context, v domain.Viewer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return f.insertErr
	}
	f.byID[v.ID] = v
	f.inserted = append(f.inserted, v)
	return nil
}

func (f *fakeStore) Find(ctx context.Context, id string) (domain.Viewer, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findErr != nil {
		return domain.Viewer{}, false, f.findErr
	}
	v, ok := f.byID[id]
	return v, ok, nil
}

type fakeTokens struct {
	mu sync.Mutex

	err    error
	next   int
	issued []string
}

func (f *fakeTokens) NewToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	f.next++
	tok := fmt.Sprintf("tok-%d", f.next)
	f.issued = append(f.issued, tok)
	return tok, nil
}

type fakeCookies struct {
	encodeErr error
	decodeErr error
}

func (f *fakeCookies) Encode(viewerID string) (string, error) {
	if f.encodeErr != nil {
		return "", f.encodeErr
	}
	return "cookie:" + viewerID, nil
}

func (f *fakeCookies) Decode(raw string) (string, error) {
	if f.decodeErr != nil {
		return "", f.decodeErr
	}
	if len(raw) > 7 && raw[:7] == "cookie:" {
		return raw[7:], nil
	}
	return "", domain.ErrInvalidCookie(errors.New("bad envelope"))
}

type fakePublisher struct {
	loggedInErr  error
	loggedOutErr error

	loggedIn  []LoggedInEvent
	loggedOut []LoggedOutEvent
}

func (p *fakePublisher) PublishLoggedIn(ctx context.Context, evt LoggedInEvent) error {
	if p.loggedInErr != nil {
		return p.loggedInErr
	}
	p.loggedIn = append(p.loggedIn, evt)
	return nil
}

func (p *fakePublisher) PublishLoggedOut(ctx context.Context, evt LoggedOutEvent) error {
	if p.loggedOutErr != nil {
		return p.loggedOutErr
	}
	p.loggedOut = append(p.loggedOut, evt)
	return nil
}

/*
Service factory for tests
*/

func testIdentity() domain.ExternalIdentity {
	return domain.ExternalIdentity{
		ExternalID:  "viewer-1",
		DisplayName: "Ada Lovelace",
		Email:       "ada@example.com",
		AvatarURL:   "https://img.example.com/ada.png",
	}
}

func testViewerRecord(token string) domain.Viewer {
	v := domain.NewViewer(testIdentity(), token)
	v.WalletBinding = "wallet-acct-1"
	return v
}

func newSvcForTest(t *testing.T) (*Service, *fakeIdentity, *fakeStore, *fakeTokens, *fakeCookies, *fakePublisher, *[]auditEntry) {
	t.Helper()

	identity := &fakeIdentity{authURL: "https://accounts.example.com/auth", ident: testIdentity()}
	store := newFakeStore()
	tokens := &fakeTokens{}
	cookies := &fakeCookies{}
	pub := &fakePublisher{}

	audits := &[]auditEntry{}
	svc := NewService(identity, store, tokens, cookies, pub).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	if svc == nil {
		t.Fatalf("svc is nil")
	}

	return svc, identity, store, tokens, cookies, pub, audits
}

/*
Small assertions
*/

func lastAudit(audits *[]auditEntry) (auditEntry, bool) {
	if audits == nil || len(*audits) == 0 {
		return auditEntry{}, false
	}
	return (*audits)[len(*audits)-1], true
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	e, ok := lastAudit(audits)
	if !ok {
		t.Fatalf("expected audit entry, got none")
	}
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}

func requireAnonymous(t *testing.T, res Result) {
	t.Helper()
	if res.Viewer != nil {
		t.Fatalf("expected anonymous result, got viewer %q", res.Viewer.ID)
	}
	if !res.DidRequest {
		t.Fatalf("expected DidRequest=true")
	}
}
