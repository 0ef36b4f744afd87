// Package tuning computes closed-form baseline PID gains (Ziegler-Nichols
// ultimate-cycle and Nichols-Black step-response rules) to compare against
// the search engines.
package tuning
