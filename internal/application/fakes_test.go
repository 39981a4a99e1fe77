package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/stretchr/testify/mock"
)

const testAddress = domain.AccountAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

type stopCall struct {
	claimedHours float64
	pointsEarned float64
}

// fakeService records every remote call in order. NodeStatus pops from
// statuses and keeps returning the last entry once one remains.
type fakeService struct {
	mu sync.Mutex

	calls   []string
	signIns []domain.SignInRequest
	conns   []domain.Connection
	tasks   []string
	stops   []stopCall
	claims  []int

	csrf          domain.CSRF
	csrfErr       error
	signInCookies string
	signInErr     error
	profile       domain.Profile
	profileErr    error
	taskErr       map[string]error
	claimErr      error
	statuses      []domain.NodeStatus
	statusErr     error
	startErr      error
	stopErr       error
	points        domain.PointsSummary
	pointsErr     error
}

func newFakeService() *fakeService {
	return &fakeService{
		csrf:          domain.CSRF{Token: "csrf-token", Cookies: "csrf=1"},
		signInCookies: "session=abc",
		points:        domain.PointsSummary{TotalPoints: 15000},
	}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeService) CSRF(_ context.Context, conn domain.Connection) (domain.CSRF, error) {
	f.record("csrf")
	f.mu.Lock()
	f.conns = append(f.conns, conn)
	f.mu.Unlock()
	if f.csrfErr != nil {
		return domain.CSRF{}, f.csrfErr
	}
	return f.csrf, nil
}

func (f *fakeService) SignIn(_ context.Context, _ domain.Connection, req domain.SignInRequest) (string, error) {
	f.record("login")
	f.mu.Lock()
	f.signIns = append(f.signIns, req)
	f.mu.Unlock()
	if f.signInErr != nil {
		return "", f.signInErr
	}
	return f.signInCookies, nil
}

func (f *fakeService) Profile(context.Context, domain.Session) (domain.Profile, error) {
	f.record("profile")
	if f.profileErr != nil {
		return domain.Profile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeService) CompleteTask(_ context.Context, _ domain.Session, title string, points string) (float64, error) {
	f.record("task")
	f.mu.Lock()
	f.tasks = append(f.tasks, title+"="+points)
	f.mu.Unlock()
	if err := f.taskErr[title]; err != nil {
		return 0, err
	}
	return 5000, nil
}

func (f *fakeService) ClaimDailyReward(_ context.Context, _ domain.Session, points int) error {
	f.record("claim")
	f.mu.Lock()
	f.claims = append(f.claims, points)
	f.mu.Unlock()
	return f.claimErr
}

func (f *fakeService) NodeStatus(context.Context, domain.Session) (domain.NodeStatus, error) {
	f.record("status")
	if f.statusErr != nil {
		return domain.NodeStatus{}, f.statusErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.statuses) == 0 {
		return domain.NodeStatus{}, nil
	}
	status := f.statuses[0]
	if len(f.statuses) > 1 {
		f.statuses = f.statuses[1:]
	}
	return status, nil
}

func (f *fakeService) StartNode(context.Context, domain.Session) error {
	f.record("start")
	return f.startErr
}

func (f *fakeService) StopNode(_ context.Context, _ domain.Session, claimedHours float64, pointsEarned float64) error {
	f.record("stop")
	f.mu.Lock()
	f.stops = append(f.stops, stopCall{claimedHours: claimedHours, pointsEarned: pointsEarned})
	f.mu.Unlock()
	return f.stopErr
}

func (f *fakeService) Points(context.Context, domain.Session) (domain.PointsSummary, error) {
	f.record("points")
	if f.pointsErr != nil {
		return domain.PointsSummary{}, f.pointsErr
	}
	return f.points, nil
}

// fakeClock never blocks. onSleep runs before the context check so tests can
// cancel at a chosen pacing point.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func(d time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		hook(d)
	}
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type fakeWallet struct {
	address    domain.AccountAddress
	signErr    error
	challenges []domain.Challenge
}

func (w *fakeWallet) Address() domain.AccountAddress {
	return w.address
}

func (w *fakeWallet) SignChallenge(challenge domain.Challenge) (domain.SignedChallenge, error) {
	w.challenges = append(w.challenges, challenge)
	if w.signErr != nil {
		return domain.SignedChallenge{}, w.signErr
	}
	return domain.SignedChallenge{Signature: "0xsig", Domain: "{}", Types: "{}", Value: "{}"}, nil
}

type fakeCredentials struct {
	keys       []string
	keysErr    error
	proxies    []string
	proxiesErr error
	referral   string
}

func (f fakeCredentials) SecretKeys(context.Context) ([]string, error) {
	return f.keys, f.keysErr
}

func (f fakeCredentials) Proxies(context.Context) ([]string, error) {
	return f.proxies, f.proxiesErr
}

func (f fakeCredentials) ReferralCode(context.Context) string {
	return f.referral
}

func testMember(label string, address domain.AccountAddress, proxy string) Member {
	return Member{
		Account: domain.Account{Label: label, Address: address, ProxyURL: proxy},
		Wallet:  &fakeWallet{address: address},
	}
}

func testSession(address domain.AccountAddress) domain.Session {
	return domain.Session{
		Address:    address,
		Label:      "Wallet 1",
		Cookies:    "session=abc",
		Connection: domain.Connection{UserAgent: "test-agent"},
	}
}

func testOrchestrator(client *fakeService, clock *fakeClock) *Orchestrator {
	return NewOrchestrator(client, clock, nil, OrchestratorConfig{
		Retry:           DefaultRetryPolicy(),
		TaskDelay:       DefaultTaskDelay,
		StopSettleDelay: DefaultStopSettleDelay,
		ReferralCode:    "a1xZyAsO",
		UserAgent:       func() string { return "test-agent" },
		Nonce:           func() string { return "nonce-123" },
	})
}

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool { return ctx != nil })
}
