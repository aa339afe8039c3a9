// Package skillmatch embeds the skill-to-course matching engine in a Go
// program without running the HTTP server.
//
// A client needs a catalog source and an embedder:
//
//	client, _ := skillmatch.New(ctx,
//	    skillmatch.WithRedis("localhost:6379", ""),
//	    skillmatch.WithCatalogFile("courses.json"), // fallback
//	    skillmatch.WithHuggingFace(os.Getenv("HF_TOKEN"), ""),
//	)
//	defer client.Close()
//
//	results, _ := client.Match(ctx, []string{"linear algebra", "python"},
//	    skillmatch.WithK(3),
//	    skillmatch.WithLevelRange(300, 699),
//	)
//
// The first catalog source option is the primary store; a second one becomes
// the fallback used when the primary fails to load.
package skillmatch
