// Package scenario loads TOML-described end-to-end edit sequences and
// replays them across a set of replicas, the same way the teacher's TestCase
// (newTestCase/validateTestCase/run) drove its reduce-algorithm benchmarks
// from .toml input files, generalized here from benchmark configuration to a
// convergence/commutativity test harness.
package scenario

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/Lz-Gustavo/ldm/ldm"
	"github.com/Lz-Gustavo/ldm/ldmconfig"
)

// StepKind names the local edit a Step performs.
type StepKind string

const (
	StepInsert StepKind = "insert"
	StepRemove StepKind = "remove"
)

// Step is one local edit applied at a named replica, then broadcast to every
// other replica as the equivalent logical operation.
type Step struct {
	Kind    StepKind
	Replica int
	Start   int64
	Length  int64
}

// Scenario is the parsed form of one .toml test file: a name, replica count,
// and ordered edit sequence.
type Scenario struct {
	Name     string
	Replicas int
	Steps    []Step
}

func newScenario(body []byte) (*Scenario, error) {
	sc := &Scenario{Replicas: 1}
	if err := toml.Unmarshal(body, sc); err != nil {
		return nil, err
	}
	if err := validateScenario(sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func validateScenario(sc *Scenario) error {
	if sc.Replicas < 1 {
		return fmt.Errorf("scenario %q: Replicas must be >= 1", sc.Name)
	}
	for i, s := range sc.Steps {
		if s.Kind != StepInsert && s.Kind != StepRemove {
			return fmt.Errorf("scenario %q: step %d: unknown kind %q", sc.Name, i, s.Kind)
		}
		if s.Replica < 0 || s.Replica >= sc.Replicas {
			return fmt.Errorf("scenario %q: step %d: replica index %d out of range", sc.Name, i, s.Replica)
		}
		if s.Start < 0 || s.Length <= 0 {
			return fmt.Errorf("scenario %q: step %d: start must be >= 0 and length > 0", sc.Name, i)
		}
	}
	return nil
}

// Load parses a single scenario file from path.
func Load(path string) (*Scenario, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %q: %w", path, err)
	}
	return newScenario(body)
}

// LoadDir parses every *.toml file directly under dir.
func LoadDir(dir string) ([]*Scenario, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading dir %q: %w", dir, err)
	}
	var out []*Scenario
	for _, e := range ents {
		if e.IsDir() || len(e.Name()) < 6 || e.Name()[len(e.Name())-5:] != ".toml" {
			continue
		}
		sc, err := Load(dir + "/" + e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// pendingOp is one logical insertLogoot/removeLogoot call queued for
// delivery to every replica.
type pendingOp struct {
	isInsert bool

	branch ldm.BranchKey
	left   *ldm.LogootPosition
	right  *ldm.LogootPosition
	start  ldm.LogootPosition
	length int64
	clk    ldm.LogootInt
}

// Result is one scenario's outcome: the final per-replica document dumps and
// whether every replica converged to node-wise-equal state.
type Result struct {
	Name      string
	Converged bool
	Mismatch  string
	Dumps     []string
}

// Run replays sc across max(sc.Replicas, cfg.Replicas) Document instances
// sharing one BranchOrder. Before each step its replica catches up on every
// earlier operation in origination order; afterwards every replica replays
// the full operation log, in origination order or, with
// cfg.ShuffleDelivery, in an independently shuffled order. It then checks
// SelfTest and node-wise convergence.
func Run(sc *Scenario, cfg *ldmconfig.Config) (*Result, error) {
	n := sc.Replicas
	if cfg.Replicas > n {
		n = cfg.Replicas
	}

	order := ldm.NewBranchOrder()
	docs := make([]*ldm.Document, n)
	branches := make([]ldm.BranchKey, n)
	for i := range docs {
		docs[i] = ldm.NewDocumentWithOrder(order)
		branches[i] = ldm.NewBranchKey()
	}

	clkCounter := int64(0)
	var pending []pendingOp
	delivered := make([]int, n)

	applyOp := func(doc *ldm.Document, op pendingOp) error {
		if op.isInsert {
			_, err := doc.InsertLogoot(op.branch, op.left, op.right, op.length, op.clk)
			return err
		}
		_, err := doc.RemoveLogoot(op.start, op.length, op.clk)
		return err
	}

	// catchUp delivers every pending op a replica hasn't seen yet, in
	// origination order, so a step's own replica has the causal history it
	// needs before it generates its next local-offset-relative op.
	catchUp := func(i int) error {
		for ; delivered[i] < len(pending); delivered[i]++ {
			if err := applyOp(docs[i], pending[delivered[i]]); err != nil {
				return err
			}
		}
		return nil
	}

	for _, step := range sc.Steps {
		if err := catchUp(step.Replica); err != nil {
			return nil, fmt.Errorf("scenario %q: catch-up delivery to replica %d: %w", sc.Name, step.Replica, err)
		}
		origin := docs[step.Replica]
		switch step.Kind {
		case StepInsert:
			env, err := origin.InsertLocal(step.Start, step.Length)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: insertLocal: %w", sc.Name, err)
			}
			var left, right *ldm.LogootPosition
			if env.HasLeft {
				left = &env.Left
			}
			if env.HasRight {
				right = &env.Right
			}
			if _, err := origin.InsertLogoot(branches[step.Replica], left, right, env.Length, env.Clk); err != nil {
				return nil, fmt.Errorf("scenario %q: insertLogoot on origin: %w", sc.Name, err)
			}
			pending = append(pending, pendingOp{
				isInsert: true,
				branch:   branches[step.Replica],
				left:     left, right: right,
				length: env.Length, clk: env.Clk,
			})
			delivered[step.Replica] = len(pending)

		case StepRemove:
			pos, err := origin.LogootPositionAtLocalOffset(step.Start)
			if err != nil {
				return nil, fmt.Errorf("scenario %q: resolving remove offset: %w", sc.Name, err)
			}
			clkCounter++
			clk := ldm.NewLogootInt(clkCounter)
			if _, err := origin.RemoveLogoot(pos, step.Length, clk); err != nil {
				return nil, fmt.Errorf("scenario %q: removeLogoot on origin: %w", sc.Name, err)
			}
			pending = append(pending, pendingOp{
				isInsert: false,
				start:    pos, length: step.Length, clk: clk,
			})
			delivered[step.Replica] = len(pending)
		}

		if cfg.SelfTest == ldmconfig.SelfTestAfterEach {
			if err := origin.SelfTest(); err != nil {
				return nil, fmt.Errorf("scenario %q: selfTest after step: %w", sc.Name, err)
			}
		}
	}

	// Every replica, including each op's originator, replays the full
	// pending log: insertLogoot/removeLogoot are idempotent under identical
	// (branch, left, right, length, clk), so the originator's redundant
	// replay is a correctness exercise, not a bug.
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i, doc := range docs {
		deliveryOrder := append([]pendingOp{}, pending...)
		if cfg.ShuffleDelivery {
			rng.Shuffle(len(deliveryOrder), func(a, b int) { deliveryOrder[a], deliveryOrder[b] = deliveryOrder[b], deliveryOrder[a] })
		}
		for _, op := range deliveryOrder {
			if err := applyOp(doc, op); err != nil {
				return nil, fmt.Errorf("scenario %q: replaying op on replica %d: %w", sc.Name, i, err)
			}
		}
		if cfg.SelfTest != ldmconfig.SelfTestNever {
			if err := doc.SelfTest(); err != nil {
				return nil, fmt.Errorf("scenario %q: selfTest on replica %d: %w", sc.Name, i, err)
			}
		}
	}

	res := &Result{Name: sc.Name, Converged: true}
	for _, doc := range docs {
		res.Dumps = append(res.Dumps, doc.Str())
	}
	for i := 1; i < len(res.Dumps); i++ {
		if res.Dumps[i] != res.Dumps[0] {
			res.Converged = false
			res.Mismatch = fmt.Sprintf("replica %d diverges from replica 0", i)
			break
		}
	}
	return res, nil
}
