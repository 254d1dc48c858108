package util

import (
	"sync"

	"github.com/convoflow/convoflow/logger"
	"go.uber.org/zap"
)

type Job any

// Worker consumes jobs from a buffered channel on a dedicated goroutine.
// Handler errors are logged, never propagated to the producer.
type Worker struct {
	name    string
	stop    chan struct{}
	wg      *sync.WaitGroup
	handler func(Job) error
	jobChan chan Job
}

func NewWorker(name string, wg *sync.WaitGroup, handler func(Job) error, capacity int) *Worker {
	return &Worker{
		jobChan: make(chan Job, capacity),
		name:    name,
		wg:      wg,
		stop:    make(chan struct{}),
		handler: handler,
	}
}

func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		for {
			select {
			case job := <-w.jobChan:
				err := w.handler(job)
				if err != nil {
					logger.Error("error in executing job in worker", zap.String("worker", w.name), zap.Any("job", job), zap.Error(err))
				}
			case <-w.stop:
				logger.Info("stopping worker", zap.String("worker", w.name))
				w.drain()
				return
			}
		}
	}()
}

// drain runs the jobs still buffered at stop time, so an accepted job is
// never silently dropped by shutdown.
func (w *Worker) drain() {
	for {
		select {
		case job := <-w.jobChan:
			if err := w.handler(job); err != nil {
				logger.Error("error in executing job in worker", zap.String("worker", w.name), zap.Any("job", job), zap.Error(err))
			}
		default:
			return
		}
	}
}

func (w *Worker) Sender() chan<- Job {
	return w.jobChan
}

func (w *Worker) Stop() {
	w.stop <- struct{}{}
}
