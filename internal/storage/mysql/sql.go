package mysql

const reviewSequence = "reviews"

const deleteReviewsSQL = `DELETE FROM reviews`

const deleteDealershipsSQL = `DELETE FROM dealerships`

// Bulk inserts are built as prefix + "(?,?,?),(?,?,?)...".
const insertReviewsPrefix = "INSERT INTO reviews (id, dealership, doc) VALUES "

const insertDealershipsPrefix = "INSERT INTO dealerships (id, state, doc) VALUES "

const resetSequenceSQL = `
INSERT INTO id_sequences (name, seq)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE seq = VALUES(seq)
`

// LAST_INSERT_ID(expr) makes the new value visible through the OK packet of
// this very statement, so the increment and the read are one atomic step.
const nextSequenceSQL = `
INSERT INTO id_sequences (name, seq)
VALUES (?, LAST_INSERT_ID(1))
ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const listReviewsSQL = `SELECT doc FROM reviews ORDER BY pk`

const listReviewsByDealerSQL = `SELECT doc FROM reviews WHERE dealership = ? ORDER BY pk`

const listDealershipsSQL = `SELECT doc FROM dealerships ORDER BY pk`

// State matches byte for byte; the server default collation folds case and accents.
const listDealershipsByStateSQL = `SELECT doc FROM dealerships WHERE state = CONVERT(? USING utf8mb4) COLLATE utf8mb4_bin ORDER BY pk`

// Matches the business key column "id", not the surrogate pk.
const findDealershipsSQL = `SELECT doc FROM dealerships WHERE id = ? ORDER BY pk`
