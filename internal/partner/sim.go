package partner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

// Outcome controls how the simulator resolves a load or show
type Outcome string

const (
	OutcomeFill   Outcome = "fill"
	OutcomeNoFill Outcome = "no-fill"
	OutcomeError  Outcome = "error"
)

// Profile configures simulated behavior for one placement. The zero value
// fills immediately with no extra events.
type Profile struct {
	Outcome   Outcome
	ErrorCode ErrorCode // used when Outcome is OutcomeError
	LoadDelay time.Duration
	ShowDelay time.Duration

	// DuplicateCallbacks fires every success callback twice, mimicking the
	// misbehaving SDK versions the adapter guards against
	DuplicateCallbacks bool

	// Show-time event injection
	EmitClick    bool
	EmitReward   bool
	RewardLabel  string
	RewardAmount int
	DismissDelay time.Duration
}

// Sim is an in-process stand-in for the Vantage SDK. It delivers every
// callback from its own goroutine, like the real SDK's thread pool.
type Sim struct {
	mu          sync.Mutex
	profiles    map[string]Profile
	metadata    map[string]string
	delegate    Delegate
	initialized bool
	initErr     *Error
}

// NewSim creates a simulator that fills every placement by default
func NewSim() *Sim {
	return &Sim{
		profiles: make(map[string]Profile),
		metadata: make(map[string]string),
	}
}

// SetProfile configures behavior for a placement
func (s *Sim) SetProfile(placementID string, p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[placementID] = p
}

// FailInitWith makes the next Initialize call fail with the given code
func (s *Sim) FailInitWith(code ErrorCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initErr = &Error{Code: code, Message: "simulated initialization failure"}
}

// Metadata returns a stored metadata value, for test introspection
func (s *Sim) Metadata(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata[key]
}

func (s *Sim) profile(placementID string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[placementID]
}

func (s *Sim) currentDelegate() Delegate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delegate
}

// Initialize implements SDK
func (s *Sim) Initialize(appID string, cb InitCallback) {
	s.mu.Lock()
	initErr := s.initErr
	s.mu.Unlock()

	go func() {
		if initErr != nil {
			cb.OnInitFailed(initErr)
			return
		}

		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()

		logger.Partner().Debug().Str("app_id", appID).Msg("simulator initialized")
		cb.OnInitialized()
	}()
}

// SetDelegate implements SDK
func (s *Sim) SetDelegate(d Delegate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegate = d
}

// Load implements SDK
func (s *Sim) Load(placementID string, cb LoadCallback) {
	s.mu.Lock()
	initialized := s.initialized
	s.mu.Unlock()

	p := s.profile(placementID)

	go func() {
		if !initialized {
			cb.OnLoadFailed(placementID, &Error{Code: ErrNotInitialized, Message: "load before initialize"})
			return
		}

		sleep(p.LoadDelay)

		switch p.Outcome {
		case OutcomeNoFill:
			cb.OnLoadFailed(placementID, &Error{Code: ErrNoFill, Message: "no ad available"})
		case OutcomeError:
			cb.OnLoadFailed(placementID, &Error{Code: p.ErrorCode, Message: "simulated load failure"})
		default:
			cb.OnLoaded(placementID)
			if p.DuplicateCallbacks {
				cb.OnLoaded(placementID)
			}
		}
	}()
}

// Show implements SDK
func (s *Sim) Show(ctx context.Context, placementID string, cb ShowCallback) {
	p := s.profile(placementID)

	go func() {
		sleep(p.ShowDelay)

		if p.Outcome == OutcomeError {
			cb.OnShowFailed(placementID, &Error{Code: p.ErrorCode, Message: "simulated show failure"})
			return
		}

		cb.OnShown(placementID)
		if p.DuplicateCallbacks {
			cb.OnShown(placementID)
		}

		d := s.currentDelegate()
		if d == nil {
			return
		}
		if p.EmitClick {
			d.OnClicked(placementID)
		}
		if p.EmitReward {
			label, amount := p.RewardLabel, p.RewardAmount
			if label == "" {
				label = "coins"
			}
			if amount == 0 {
				amount = 1
			}
			d.OnRewarded(placementID, label, amount)
		}
		sleep(p.DismissDelay)
		d.OnDismissed(placementID)
	}()
}

// NewBanner implements SDK
func (s *Sim) NewBanner(placementID string, size Size, l BannerListener) BannerView {
	return &simBanner{sim: s, placementID: placementID, size: size, listener: l}
}

// SetMetadata implements SDK
func (s *Sim) SetMetadata(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[key] = value
}

// BidToken implements SDK
func (s *Sim) BidToken() string {
	return ""
}

// DestroyCounter is implemented by simulated views so tests can verify
// single release
type DestroyCounter interface {
	DestroyCount() int64
}

// simBanner is the simulator's partner-owned banner view
type simBanner struct {
	sim         *Sim
	placementID string
	size        Size
	listener    BannerListener
	destroys    atomic.Int64
}

func (b *simBanner) Load() {
	p := b.sim.profile(b.placementID)

	go func() {
		sleep(p.LoadDelay)

		switch p.Outcome {
		case OutcomeNoFill:
			b.listener.OnBannerFailed(b, &Error{Code: ErrNoFill, Message: "no ad available"})
		case OutcomeError:
			b.listener.OnBannerFailed(b, &Error{Code: p.ErrorCode, Message: "simulated load failure"})
		default:
			b.listener.OnBannerLoaded(b)
			if p.DuplicateCallbacks {
				b.listener.OnBannerLoaded(b)
			}
			b.listener.OnBannerShown(b)
			if p.DuplicateCallbacks {
				b.listener.OnBannerShown(b)
			}
			if p.EmitClick {
				b.listener.OnBannerClicked(b)
				b.listener.OnBannerLeftApplication(b)
			}
		}
	}()
}

func (b *simBanner) PlacementID() string { return b.placementID }
func (b *simBanner) Size() Size          { return b.size }

func (b *simBanner) Destroy() {
	b.destroys.Add(1)
}

// DestroyCount reports how many times Destroy was called, for tests that
// verify single release
func (b *simBanner) DestroyCount() int64 {
	return b.destroys.Load()
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
