// Package concord is the Go client for consensus ranking searches.
//
// A search sends expert weights to the ranking engine, follows its event
// stream and returns, per optimality criterion, the tied optimal orderings
// together with each expert's distance and competence.
//
//	client, _ := concord.New(ctx,
//	    concord.WithEngine("http://127.0.0.1:8000"),
//	    concord.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	res, _ := client.Search(ctx, concord.SearchRequest{
//	    Weights:      map[string]float64{"Alice": 1, "Bob": 2},
//	    LimitObjects: 6,
//	}, concord.OnProgress(func(p concord.Progress) { fmt.Println(p.Percent) }))
//
//	_ = res.Select(concord.SumHamming, 1)
//	stats, _ := res.Stats(concord.SumHamming)
//	_ = res.Export(os.Stdout, concord.SumRank)
//
// The pairwise matrix codec and the competence engine work without a client:
//
//	doc, _ := concord.EncodeMatrix(concord.Ordering{"3", "1", "2"})
//	m := concord.DecodeMatrix(doc.Pairs, doc.Order.Sorted())
package concord
