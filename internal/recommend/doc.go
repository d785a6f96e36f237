// Cragrec - Climbing Route Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cragrec

/*
Package recommend turns route ratings into ranked route recommendations.

Every request is a full recompute. The Engine reads the rating triples from a
RatingSource once, builds a sparse RatingMatrix, asks an Algorithm for a
PredictionMap and ranks it:

	triples -> BuildMatrix -> Algorithm.Predict -> Rank -> Recommendation

Nothing is cached between requests and no state is shared, so an Engine is
safe for concurrent use.

# Unrated versus zero

A RatingMatrix only holds entries that came from a rating row. A missing
entry means "unrated"; a stored score of 0 is a real rating and is kept.
MatrixOptions.ZeroIsUnrated drops zero scores while building the matrix,
which reproduces stores where 0 was used as a placeholder for "no opinion".

# Degenerate cases

A user with no rows, or with no neighbour above the similarity threshold,
gets an empty Recommendation and a nil error. Store failures are returned to
the caller unchanged.

# Complexity

With R rating rows, U users, I items and S kept neighbours, one request costs
O(R) to build the matrix, O(U * r) for similarities where r is the number of
ratings per user, O(I * S) for predictions and O(P log P) to rank P
predictions. Evaluating every user therefore approaches O(U^2 * I).
*/
package recommend
