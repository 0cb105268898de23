package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	nodex "github.com/ovgu-assistant/campus-assistant/agent/nodes"
)

func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
	maxSteps int,
) (compose.Runnable[*contractx.TurnState, *contractx.TurnState], error) {
	graph := compose.NewGraph[*contractx.TurnState, *contractx.TurnState]()

	if err := graph.AddLambdaNode(nodex.NodeRouter,
		compose.InvokableLambda(func(ctx context.Context, in *contractx.TurnState) (*contractx.TurnState, error) {
			return nodex.RouteQuery(in, o.recorder)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeRouter, err)
	}

	for _, topic := range contractx.Topics {
		topic := topic
		name := nodex.ExecutorNode(topic)
		if err := graph.AddLambdaNode(name,
			compose.InvokableLambda(func(ctx context.Context, in *contractx.TurnState) (*contractx.TurnState, error) {
				return nodex.ExecuteTopic(ctx, in, topic, o.registry, o.deps, o.recorder)
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	if err := graph.AddLambdaNode(nodex.NodeHandleNoMatch,
		compose.InvokableLambda(func(ctx context.Context, in *contractx.TurnState) (*contractx.TurnState, error) {
			return nodex.HandleNoMatch(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeHandleNoMatch, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSynthesize,
		compose.InvokableLambda(func(ctx context.Context, in *contractx.TurnState) (*contractx.TurnState, error) {
			return nodex.Synthesize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSynthesize, err)
	}

	decideNext := compose.NewGraphBranch(
		func(ctx context.Context, in *contractx.TurnState) (string, error) {
			return nodex.DecideNext(in)
		},
		nodex.BranchTargets(),
	)
	if err := graph.AddBranch(nodex.NodeRouter, decideNext); err != nil {
		return nil, fmt.Errorf("add branch decide_next: %w", err)
	}

	edges := [][2]string{
		{compose.START, nodex.NodeRouter},
		{nodex.NodeExecuteOVGU, nodex.NodeSynthesize},
		{nodex.NodeExecuteFIN, nodex.NodeSynthesize},
		{nodex.NodeExecuteMagdeburg, nodex.NodeSynthesize},
		{nodex.NodeHandleNoMatch, nodex.NodeSynthesize},
		{nodex.NodeSynthesize, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx,
		compose.WithGraphName("orchestrator.turn"),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
