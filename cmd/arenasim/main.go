package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mergearena/internal/battle"
	"mergearena/internal/bot"
	"mergearena/internal/catalog"
	"mergearena/internal/config"
	"mergearena/internal/game"
	"mergearena/internal/util"
)

// stepCap bounds a single self-play match in applied actions.
const stepCap = 5000

type matchResult struct {
	MatchID    string               `json:"match_id"`
	Seed       int64                `json:"seed"`
	Winner     int                  `json:"winner"` // -1 draw
	Rounds     int                  `json:"rounds"`
	BaseHealth [2]int               `json:"base_health"`
	Battles    []game.BattleOutcome `json:"battles"`
	Events     []battle.Event       `json:"events,omitempty"`
}

func runMatch(rules *config.RulesConfig, cat *catalog.Catalog, seed int64, record bool, log *zap.Logger) matchResult {
	var events []battle.Event
	opts := []game.Option{game.WithLogger(log)}
	if record {
		opts = append(opts, game.WithBattleEvents(func(ev battle.Event) {
			events = append(events, ev)
		}))
	}
	m := game.NewMatch(rules, cat, seed, opts...)

	rng := util.New(seed + 1)
	bots := [2]bot.Policy{&bot.Greedy{Res: cat}, &bot.Random{Rng: rng}}

	var battles []game.BattleOutcome
	for steps := 0; !m.Done() && steps < stepCap; steps++ {
		obs := m.Observe()
		prev := m.LastBattle
		if err := m.Apply(bots[obs.Active].Act(obs, obs.Legal)); err != nil {
			log.Error("bot produced illegal action", zap.Error(err))
			break
		}
		if m.LastBattle != nil && m.LastBattle != prev {
			battles = append(battles, *m.LastBattle)
		}
	}

	winner := -1
	p0, p1 := m.Player(0).BaseHealth, m.Player(1).BaseHealth
	if p0 > p1 {
		winner = 0
	} else if p1 > p0 {
		winner = 1
	}
	res := matchResult{
		MatchID:    uuid.NewString(),
		Seed:       seed,
		Winner:     winner,
		Rounds:     m.Round,
		BaseHealth: [2]int{p0, p1},
		Battles:    battles,
	}
	if record {
		res.Events = events
	}
	return res
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func main() {
	var cfgDir, out string
	var seed int64
	var n int
	var saveLog bool
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.Int64Var(&seed, "seed", 12345, "seed")
	flag.IntVar(&n, "n", 1, "number of matches")
	flag.BoolVar(&saveLog, "log", true, "save full battle event log when n==1")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	rules, units, err := config.LoadAll(cfgDir)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}
	cat := catalog.New(units, rules)

	if n <= 1 {
		res := runMatch(rules, cat, seed, saveLog, log)
		if err := writeJSON(out, res); err != nil {
			log.Fatal("write result", zap.Error(err))
		}
		fmt.Printf("Match %s finished. Winner=%d, Rounds=%d -> %s\n", res.MatchID, res.Winner, res.Rounds, out)
		return
	}

	type stat struct {
		Wins      [2]int
		Draws     int
		SumRounds int
	}
	var st stat
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	workers := 8
	jobs := make(chan int, n)
	quiet := zap.NewNop()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Seed from the job index alone so the batch is reproducible
			// no matter how jobs land on workers.
			for i := range jobs {
				res := runMatch(rules, cat, seed+int64(i), false, quiet)

				mu.Lock()
				if res.Winner >= 0 {
					st.Wins[res.Winner]++
				} else {
					st.Draws++
				}
				st.SumRounds += res.Rounds
				mu.Unlock()
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	summary := map[string]any{
		"runs":        n,
		"p0_win_rate": float64(st.Wins[0]) / float64(n),
		"p1_win_rate": float64(st.Wins[1]) / float64(n),
		"draw_rate":   float64(st.Draws) / float64(n),
		"avg_rounds":  float64(st.SumRounds) / float64(n),
	}
	if err := writeJSON(out, summary); err != nil {
		log.Fatal("write summary", zap.Error(err))
	}
	fmt.Printf("Batch %d done -> %s\n", n, out)
}
