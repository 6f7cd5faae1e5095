package tasks

// Prompt templates. {context} is replaced by the document content.
const (
	promptClassif = `Given the following text:
    ´´´
    {context}
    ´´´

Examine the document given and check the following:
    1. Is the document in English?
    2. Are the document's contents about topics related to financial regulation, industry standards, compliance processes, open source documentation and licensing?

    If either of them is false, then say "no", otherwise say "yes". Output your choice only.`

	promptCleaning = `Given the following text:
    ´´´
    {context}
    ´´´

Examine the given document and clean its contents. I'd like you to do the following:
    1. Cut off irrelevant parts of the text that are involved with social media links or with a site's navigation menu.
    2. Summarize the text so that it is more concise in its ideas and facts.

The resulting text must not differ much in its contents. It is for restructuring purposes only. Output the summary text.`

	promptAbbrev = `Given the following text:
    ´´´
    {context}
    ´´´
    Extract all abbreviations that appear along with their expanded versions such that:
    a. The abbreviations have to do with financial regulation, compliance or supervision
    b. The expanded version is the one used in the text, or the standard one if the text does not expand it

    Return them in a numerated list following this format:
    ´´´
    1. <abbreviation> - <expanded version>
    2. <abbreviation> - <expanded version>
    .
    .
    .
    n. <abbreviation> - <expanded version>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptDefinitions = `Given the following text:
    ´´´
    {context}
    ´´´
    Extract the regulatory and financial terms the text defines or relies on, together with a definition such that:
    a. The definition follows the text when the text defines the term
    b. The definition is concise and factual

    Return them in a numerated list following this format:
    ´´´
    1. <term> - <definition>
    2. <term> - <definition>
    .
    .
    .
    n. <term> - <definition>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptLinks = `Given the following text:
    ´´´
    {context}
    ´´´
    List every law, regulation, directive or rule the text is about or refers to by name.

    Return them in a numerated list following this format:
    ´´´
    1. <law name>
    2. <law name>
    .
    .
    .
    n. <law name>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptQA = `Given the following text:
    ´´´
    {context}
    ´´´
    Generate question/answer pairs relevant to the text you observe. These questions must be formulated in a way such that:
    a. The question is focused on the regulation, obligation or procedure the text describes
    b. The question must have a financial regulatory intent
    c. The answer distills knowledge in a concise and factual manner in order to answer the question's intent.

    Return them in a numerated list following this format:
    ´´´
    1. <question> - <answer>
    2. <question> - <answer>
    .
    .
    .
    n. <question> - <answer>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptCDM = `Given the following text from the Common Domain Model documentation:
    ´´´
    {context}
    ´´´
    Generate question/answer pairs that explain the data types, events and processes the text describes such that:
    a. The question names the Common Domain Model concept it is about
    b. The answer distills knowledge in a concise and factual manner

    Return them in a numerated list following this format:
    ´´´
    1. <question> - <answer>
    2. <question> - <answer>
    .
    .
    .
    n. <question> - <answer>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptNER = `Given the following text:
    ´´´
    {context}
    ´´´
    Extract the named entities that appear in the text (regulators, institutions, laws, financial instruments, jurisdictions) with their entity type.

    Return them in a numerated list following this format:
    ´´´
    1. <entity> - <entity type>
    2. <entity> - <entity type>
    .
    .
    .
    n. <entity> - <entity type>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptOSIQA = `Given the following text:
    ´´´
    {context}
    ´´´
    Generate question/answer pairs relevant to the text you observe. These questions must be formulated in a way such that:
    a. The question is focused on knowing more about open source software licensing and applications
    b. The question must have a financial regulatory intent
    c. The answer distills knowledge in a concise and factual manner in order to answer the question's intent.

    Return them in a numerated list following this format:
    ´´´
    1. <question> - <answer>
    2. <question> - <answer>
    .
    .
    .
    n. <question> - <answer>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`

	promptOSIAbbrev = `Given the following text:
    ´´´
    {context}
    ´´´
    Extract all abbreviations that appear along with their expanded versions such that:
    a. The abbreviations have to do with open source licensing
    b. The question must have a financial regulatory intent
    c. The answer distills knowledge in a concise and factual manner in order to answer the abbreviation's factual meaning.

    Return them in a numerated list following this format:
    ´´´
    1. <abbreviation> - <expanded version>
    2. <abbreviation> - <expanded version>
    .
    .
    .
    n. <abbreviation> - <expanded version>
    ´´´
    ONLY provide this list, nothing else, nothing extra.`
)

// System prompts.
const (
	systemClassif  = "You are an expert in financial regulation and compliance, managing knowledge from both the USA and Europe, You are also well versed in open source technologies."
	systemCleaning = "You are a diligent editor and proofreader expert in cleaning articles."
	systemGeneral  = "You are an accurate and knowledgeable assistant in financial regulation and compliance for the USA and Europe."
	systemQA       = "You are an expert in financial regulation who writes precise exam questions and answers."
	systemCDM      = "You are an expert in the FINOS Common Domain Model and derivatives trade lifecycle processing."
	systemOSI      = "You are an accurate, articulate and knowledgeable in open source licensing knowledge for financial and business applications."
)
