// Package pkg provides the core libraries for seatlens seat view mapping.
//
// # Overview
//
// Seatlens turns a click on a 2D venue seatmap into a 3D camera pose and a
// rendered view of the field from that seat. The pkg directory is organized
// around that flow:
//
//	Seatmap Click (normalized x,y)
//	         ↓
//	    [geometry] package (point-in-polygon, depth, lateral offset)
//	         ↓
//	    [mapper] package (section resolution → camera pose)
//	         ↓
//	    [rendercache] package (fingerprint dedup, LRU, TTL)
//	         ↓
//	    [renderclient] package (GPU render backend)
//	         ↓
//	    PNG seat view
//
// # Main Packages
//
// [geometry] - Planar primitives on the normalized seatmap: ray-casting
// point-in-polygon tests, centroids, depth interpolation along a section and
// lateral offset across it.
//
// [venue] - Venue configuration: tiers, sections and their polygons, loaded
// from TOML files and validated at startup. The Registry holds the active
// venue set with atomic replacement.
//
// [mapper] - The coordinate mapping engine. Resolves a click to a section
// (with nearest-section fallback and overlap tie-breaking) and places the
// camera on the venue's cylindrical coordinate system.
//
// [camera] - Pose types, Blender-convention Euler rotations, and position
// fingerprinting on a half-meter grid so nearby clicks share renders.
//
// [rendercache] - Concurrent render cache: single-flight deduplication,
// byte- and entry-bounded LRU eviction, lazy TTL expiry, and an optional
// shared backing store.
//
// [renderclient] - HTTP client for the render backend with transient/fatal
// error classification and exponential-backoff retry.
//
// [seatview] - Composition of the above into the end-to-end service used by
// the CLI and HTTP API.
//
// [errs] - Structured errors with machine-readable codes shared by every
// layer.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// # Quick Start
//
// Map a click and fetch the rendered view:
//
//	venues, _ := venue.LoadDir("venues")
//	cache := rendercache.New(rendercache.Config{TTL: 45 * time.Minute}, nil, logger)
//	client := renderclient.NewHTTPClient("http://gpu:8000")
//	svc := seatview.New(venue.NewRegistry(venues...), cache, client, logger)
//
//	png, info, err := svc.View(ctx, "yankee_stadium",
//	    geometry.Point{X: 0.5, Y: 0.65}, seatview.QualityPreview)
//
// [geometry]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/geometry
// [venue]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/venue
// [mapper]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/mapper
// [camera]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/camera
// [rendercache]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/rendercache
// [renderclient]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/renderclient
// [seatview]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/seatview
// [errs]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/errs
// [buildinfo]: https://pkg.go.dev/github.com/seatlens/seatlens/pkg/buildinfo
package pkg
