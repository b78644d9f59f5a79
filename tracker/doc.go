/*
Package tracker contains the playing engine of padseq: the model of tempo, key,
pad settings and patterns, and the components that turn input into scheduled
notes.

All scheduling is done by Loopers. A Looper pulls events from a lazy, possibly
infinite sequence (see package seq) and fires their starts and stops when the
clock reaches them, a small lookahead ahead of time. The Arpeggiator runs one
Looper per held voice; the PatternSequencer one per playing pattern.

The Engine owns all of this and runs on a single goroutine. The rest of the
program talks to it only through the Broker: inputs such as PadInput, NoteOn or
PlayPattern are sent to Broker.ToEngine, and alerts and MarkerMoved messages
come back on Broker.ToModel.
*/
package tracker
