// Package recodex embeds the recodex recommendation engine in a Go program.
//
// The catalog is loaded once, from a CSV file, an in-memory slice or a
// Valkey/Redis store seeded by recodex-seed, and the similarity structure is
// built before New returns. Queries are safe for concurrent use.
//
//	client, err := recodex.New(ctx, recodex.WithCSV("products.csv"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	recs, err := client.Recommend(ctx, []int{1, 4})
//	switch {
//	case errors.Is(err, recodex.ErrEmptyHistory):
//	    // nothing viewed yet
//	case errors.Is(err, recodex.ErrProductNotFound):
//	    // stale id in the browsing history
//	}
package recodex
