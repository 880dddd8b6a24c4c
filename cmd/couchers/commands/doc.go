// Package commands implements the couchers command-line client.
//
// Every command loads the YAML config (--config or $COUCHERS_CONFIG), wires
// the RPC transport, query cache and preference store, and restores the
// persisted query cache when cache.persist is on. Drafts, banners and the
// cache snapshot live in the file store under the user cache dir unless
// storage.driver selects redis (shared) or memory (one run only). Failures
// are printed with their friendly message and exit with status 1.
//
//	couchers user 42
//	couchers friends add 42
//	couchers messages mark-all-read --kind hosting
//	couchers reference friend 42 --appropriate true --rating 0.9 --text "Great guy"
//	couchers draft set 7 see you at the station
package commands
