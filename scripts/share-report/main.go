// share-report: reads the sale state on every network that has a BigIncGenesis
// address configured, in parallel, and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/share-report
//
// The config directory follows the CLI ($BIGCLI_CONFIG_DIR, then ~/.bigcli).
package main

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/bigincgenesis/bigcli/internal/chain"
	"github.com/bigincgenesis/bigcli/internal/config"
	"github.com/bigincgenesis/bigcli/internal/contract"
	"github.com/bigincgenesis/bigcli/internal/shares"
)

const rpcTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	network   string
	available string
	sold      string
	team      string
	holders   int
	presale   string
	err       string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}
	reg := chain.NewRegistry()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, n := range reg.All() {
		addr := cfg.Addresses(n.Name).BigIncGenesis
		if config.IsPlaceholder(addr) {
			continue
		}
		rpcs := append(slices.Clone(cfg.GetRPCs(n.Name)), n.RPCs...)
		if len(rpcs) == 0 {
			continue
		}

		wg.Add(1)
		go func(n chain.Network, rpcURL, addr string) {
			defer wg.Done()
			r := report(n, rpcURL, addr)

			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(n, rpcs[0], addr)
	}

	wg.Wait()

	if len(results) == 0 {
		fmt.Println("no network has a BigIncGenesis address (see: bigcli addresses sync)")
		return
	}
	printTable(results)
}

func report(n chain.Network, rpcURL, addr string) result {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	r := result{network: n.Name, available: "—", sold: "—", team: "—", presale: "—"}

	client, err := chain.Dial(ctx, rpcURL)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	defer client.Close()

	// Quick ping first, skip networks that don't respond.
	if _, _, err := client.Ping(ctx); err != nil {
		r.err = "unreachable"
		return r
	}

	g, err := contract.NewGenesis(client.Backend(), addr)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	available, err := g.AvailableShares(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	sold, err := g.SharesSold(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	holders, err := g.Shareholders(ctx)
	if err != nil {
		r.err = shortErr(err)
		return r
	}

	f := shares.Derive(available, nil, sold, holders)
	r.available = shares.Percent2(f.AvailableShare)
	r.sold = shares.Percent2(f.SoldShare)
	r.team = shares.Percent2(f.TeamShare)
	r.holders = f.TotalShareholders
	if f.IntegrityWarning() != nil {
		r.err = "team share negative"
	}

	if active, err := g.PresaleActive(ctx); err == nil {
		r.presale = map[bool]string{true: "active", false: "ended"}[active]
	}
	return r
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool { return results[i].network < results[j].network })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NETWORK\tAVAILABLE\tSOLD\tTEAM\tHOLDERS\tPRESALE\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 9)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 7)+"\t"+
		strings.Repeat("-", 7)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.network, r.available, r.sold, r.team, r.holders, r.presale, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
