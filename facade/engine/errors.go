package engine

import "errors"

var (
	errWorkerDied        = errors.New("facade: worker died")
	errTransportNotFound = errors.New("facade: transport not found")
	errProducerNotFound  = errors.New("facade: producer not found")
	errCannotConsume     = errors.New("facade: router cannot consume producer with given capabilities")
	errNoRecvTransport   = errors.New("facade: participant has no receive transport")
)
