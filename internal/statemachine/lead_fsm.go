package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/vidaplan/corretora-api/internal/models"
)

// LeadFSM wraps a lead with its pipeline state machine
type LeadFSM struct {
	lead *models.Lead
	fsm  *fsm.FSM
}

// NewLeadFSM creates a new lead pipeline state machine
func NewLeadFSM(lead *models.Lead) *LeadFSM {
	lfsm := &LeadFSM{
		lead: lead,
	}

	lfsm.fsm = fsm.NewFSM(
		lead.Stage,
		fsm.Events{
			// novo → em_contato
			{Name: "contact", Src: []string{models.LeadStageNovo}, Dst: models.LeadStageEmContato},

			// em_contato → proposta_enviada
			{Name: "propose", Src: []string{models.LeadStageEmContato}, Dst: models.LeadStageProposta},

			// em_contato/proposta_enviada → fechado
			{Name: "win", Src: []string{models.LeadStageEmContato, models.LeadStageProposta}, Dst: models.LeadStageFechado},

			// any open stage → perdido
			{Name: "lose", Src: []string{models.LeadStageNovo, models.LeadStageEmContato, models.LeadStageProposta}, Dst: models.LeadStagePerdido},

			// perdido → em_contato (revive)
			{Name: "revive", Src: []string{models.LeadStagePerdido}, Dst: models.LeadStageEmContato},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Advance fires a named pipeline event and syncs the lead's stage.
func (l *LeadFSM) Advance(ctx context.Context, event string) error {
	if err := l.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("lead cannot %s from stage %s: %w", event, l.lead.Stage, err)
	}
	l.lead.Stage = l.fsm.Current()
	return nil
}

// Can reports whether the pipeline event may fire in the current stage.
func (l *LeadFSM) Can(event string) bool {
	return l.fsm.Can(event)
}

// Current returns the current stage
func (l *LeadFSM) Current() string {
	return l.fsm.Current()
}
