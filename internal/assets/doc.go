// Package assets stores rendered diagram documents and caches on-demand renders.
//
// [FileStore] writes one SVG per exercise under the configured directory and hands back the public path recorded on
// the exercise. [Cache] memoises renders keyed by note range and layout options, in process ([MemoryCache]) or in
// Redis ([RedisCache]) when several server processes share the work.
package assets
