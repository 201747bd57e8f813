package console

func newRunTable() *Table {
	t := newTable(OriginRun)

	// Lifecycle.
	t.Register(formatRunQueued, "run.queued")
	t.Register(formatRunWaitingForBuild, "run.waiting_for_build")
	t.Register(formatRunStarted, "run.started", "run.start")
	t.Register(formatEngineStarted, "engine.start", "engine.started")
	t.Register(formatPhaseStart, "run.phase.start", "engine.phase.start")
	t.Register(formatPhaseComplete, "run.phase.complete", "engine.phase.complete")
	t.Register(formatFileStart, "engine.file.start")
	t.Register(formatSheetStart, "engine.sheet.start")

	// Detector and classifier telemetry.
	t.Register(formatColumnScore,
		"engine.detector.column.score",
		"engine.column_detector.score",
		"run.column_detector.score",
	)
	t.Register(formatRowScore,
		"engine.detector.row.score",
		"engine.row_detector.score",
		"run.row_detector.score",
	)
	t.Register(formatColumnClassification, "engine.column_classification", "run.column_classification")
	t.Register(formatRowClassification, "engine.row_classification", "run.row_classification")

	// Summaries.
	t.Register(formatTableSummary, "engine.table.summary", "run.table.summary")
	t.Register(formatSheetSummary, "engine.sheet.summary", "run.sheet.summary")
	t.Register(formatFileSummary, "engine.file.summary", "run.file.summary")

	// Validation.
	t.Register(formatValidationIssue, "engine.validation.issue", "run.validation.issue")
	t.Register(formatValidationSummary, "engine.validation.summary", "run.validation.summary")

	// Completion.
	t.Register(formatRunComplete, "run.complete", "engine.complete", "engine.run.summary")
	t.Register(formatRunError, "run.error")
	t.Register(formatRunCancelled, "run.cancelled")

	t.Register(formatLogLine, eventConsoleLine)

	t.RegisterPrefix("config.", formatConfigFamily)
	t.RegisterPrefix("engine.config.", formatConfigFamily)
	t.RegisterPrefix("run.transform.", formatTransformFamily)
	t.RegisterPrefix("engine.transform.", formatTransformFamily)
	t.RegisterPrefix("engine.column_detector.", formatColumnDetectorFamily)
	t.RegisterPrefix("run.column_detector.", formatColumnDetectorFamily)
	t.RegisterPrefix("engine.row_detector.", formatRowDetectorFamily)
	t.RegisterPrefix("run.row_detector.", formatRowDetectorFamily)
	return t
}
