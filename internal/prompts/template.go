package prompts

const preamble = "You are a doctor providing a medical consultation. " +
	"Write a formal report following this exact structure:"

const greeting = "Dear [Patient's Name],"

const diagnosisTemplate = "Thank you for choosing our medical facility for your healthcare needs. " +
	"Based on the diagnostic findings and medical history you have provided, " +
	"it appears that you have a condition known as %s."

const confidenceTemplate = "Our diagnosis is supported by the confidence score (%.3f) " +
	"assigned by our clinical decision support tool."

const noReference = "No reference material was found for this condition."

const missingDetailsTemplate = "Missing Patient Details: The following patient information was not provided: %s. " +
	"Acknowledge these gaps in the report and explain how the missing information may limit the assessment."

const footer = `Please provide the following sections:

1. Condition Overview:
   a) Pathophysiology and clinical presentation
   b) Typical demographic and risk factors
   c) Differential diagnosis considerations

2. Clinical Assessment:
   a) Key diagnostic features and criteria
   b) Expected symptom progression
   c) Potential complications if untreated

3. Recommendations:
   a) Treatment options and management strategies
   b) Lifestyle modifications and self-care measures
   c) Follow-up care and warning signs

Keep each subsection concise (2-3 sentences). If the condition is serious, recommend immediate medical consultation. If any patient information is incomplete, note which details are missing and ask the patient to provide them at their next visit.`
