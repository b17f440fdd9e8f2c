package postgres

// COALESCE lets callers backfill historical reviews with their own timestamp
// while the common case falls through to NOW(), same as the column default.
const insertReviewSQL = `
INSERT INTO allergy_reviews
  (center_lat, center_lng, radius_km, pollen_type, severity, symptoms, review_text, created_at)
VALUES
  ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
RETURNING id, created_at
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const reviewColumns = `
  id,
  center_lat,
  center_lng,
  radius_km,
  pollen_type,
  severity,
  symptoms,
  review_text,
  created_at`

const getReviewSQL = `
SELECT` + reviewColumns + `
FROM allergy_reviews
WHERE id = $1
`

// Newest first everywhere; id breaks ties so paging stays stable when
// timestamps collide.
const listByPollenTypeSQL = `
SELECT` + reviewColumns + `
FROM allergy_reviews
WHERE pollen_type = $1
ORDER BY created_at DESC, id DESC
LIMIT $2
`

const listRecentSQL = `
SELECT` + reviewColumns + `
FROM allergy_reviews
ORDER BY created_at DESC, id DESC
LIMIT $1
`

const listInBoundsSQL = `
SELECT` + reviewColumns + `
FROM allergy_reviews
WHERE center_lat BETWEEN $1 AND $2
  AND center_lng BETWEEN $3 AND $4
ORDER BY created_at DESC, id DESC
LIMIT $5
`

// review_summary is a plain (non-materialized) view, so this hits the live
// table on every call.
const summarySQL = `
SELECT
  pollen_type,
  severity,
  review_count,
  avg_radius_km
FROM review_summary
ORDER BY pollen_type, severity
`
