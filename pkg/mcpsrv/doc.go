// Package mcpsrv serves a hyper instance to MCP clients over stdio.
//
// A server wraps one [hyper.Client]. By default it registers the hyper_*
// tools (one per service operation, plus jq, schema inference and
// validation over stored result sets, and storage object query/inspect),
// the hyper:// resources and the hyper_guide prompt:
//
//	client, err := hyper.New(os.Getenv("HYPER"), hyper.WithDomain("movies"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server, err := mcpsrv.NewServer(client, mcpsrv.WithVersion(version))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	err = server.Run(ctx)
//
// Settings not given as options are read from the environment (see
// internal/config): result store size, download and preview caps, LOG_*.
//
// # Extension
//
// Custom tools are plain go-sdk handlers. [WithDepsTool] hands the builder
// the client and the result store; [WithResultSetTool] resolves a
// result_set_id produced by hyper_data_list, hyper_data_query and the
// other listing tools before calling the handler:
//
//	type TitlesInput struct {
//	    mcpsrv.ResultSetRef
//	}
//
//	type TitlesOutput struct {
//	    Titles []string `json:"titles,omitzero"`
//	}
//
//	mcpsrv.WithResultSetTool(&mcp.Tool{Name: "titles", Description: "List document titles"},
//	    func(ctx context.Context, docs []map[string]any, in TitlesInput) (TitlesOutput, error) {
//	        var out TitlesOutput
//	        for _, doc := range docs {
//	            if t, ok := doc["title"].(string); ok {
//	                out.Titles = append(out.Titles, t)
//	            }
//	        }
//	        return out, nil
//	    })
//
// [WithoutBuiltinTools] and [WithoutBuiltinPrompts] serve only what the
// options add.
package mcpsrv
